package tests

import (
	"sync"

	"src.goblgobl.com/boleto/payment"
)

// In-memory stand-in for the MercadoPago client. Payments are seeded
// by tests, preferences are recorded so tests can assert on what was
// sent to the provider.
type FakePayments struct {
	sync.Mutex
	payments      map[string]*payment.Payment
	Preferences   []payment.CreatePreference
	PreferenceErr error
}

func NewFakePayments() *FakePayments {
	return &FakePayments{payments: make(map[string]*payment.Payment)}
}

func (f *FakePayments) SeedPayment(id string, status string, externalReference string) {
	f.Lock()
	defer f.Unlock()
	f.payments[id] = &payment.Payment{
		Id:                id,
		Status:            status,
		ExternalReference: externalReference,
	}
}

func (f *FakePayments) Reset() {
	f.Lock()
	defer f.Unlock()
	f.payments = make(map[string]*payment.Payment)
	f.Preferences = f.Preferences[:0]
	f.PreferenceErr = nil
}

func (f *FakePayments) FetchPayment(id string) (*payment.Payment, error) {
	f.Lock()
	defer f.Unlock()
	return f.payments[id], nil
}

func (f *FakePayments) CreatePreference(opts payment.CreatePreference) (*payment.Preference, error) {
	f.Lock()
	defer f.Unlock()
	if err := f.PreferenceErr; err != nil {
		return nil, err
	}
	f.Preferences = append(f.Preferences, opts)
	return &payment.Preference{
		Id:        "pref_" + opts.ExternalReference,
		InitPoint: "https://mp.test/init/" + opts.ExternalReference,
	}, nil
}

// the concrete fake, for tests that need to seed or inspect it
func Payments() *FakePayments {
	return payment.Client.(*FakePayments)
}
