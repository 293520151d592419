package data

import "time"

// Audit entry for an operator scan. Written once, never updated.
type Scan struct {
	Id        string    `json:"id"`
	BoletoId  int64     `json:"boleto_id"`
	ScannedBy int64     `json:"scanned_by"`
	Created   time.Time `json:"created"`
}

type ScanCreate struct {
	Id        string
	BoletoId  int64
	ScannedBy int64
}
