package models

// PresenceUpdate is pushed to viewers after a successful badge toggle.
type PresenceUpdate struct {
	ID        int64  `json:"id"`
	FullName  string `json:"full_name"`
	RFIDUID   string `json:"rfid_uid"`
	IsPresent bool   `json:"is_present"`
}

// TransactionUpdate is pushed to viewers for device-originated debits.
type TransactionUpdate struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
