package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// AttendanceRequest is the body posted by the reader on every badge scan.
type AttendanceRequest struct {
	RFIDUID string `json:"rfid_uid" form:"rfid_uid"`
}

// CardCheckRequest is the body of POST /api/card.
type CardCheckRequest struct {
	UID string `json:"uid" form:"uid"`
}

// TransactionRequest comes either from the browser form or from the ESP32.
type TransactionRequest struct {
	CardUID string     `json:"card_uid" form:"card_uid" query:"card_uid"`
	PIN     FlexString `json:"pin" form:"pin" query:"pin"`
	Amount  FlexString `json:"amount" form:"amount" query:"amount"`
	From    string     `json:"from" form:"from" query:"from"`
}

// FlexString accepts both JSON strings and JSON numbers. The reader firmware
// sends pin and amount as numbers, the browser form sends them as text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the trimmed text value.
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}
