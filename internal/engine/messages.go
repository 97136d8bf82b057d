package engine

// User-facing messages. Device replies and viewer broadcasts reuse them verbatim.
const (
	MsgBadgeMissing   = "RFID UID missing"
	MsgUserNotFound   = "User not found"
	MsgLookupFailed   = "Server error while looking up user"
	MsgPresenceFailed = "Error updating presence"

	MsgFieldsRequired = "Card UID, PIN, and Amount are required"
	MsgInvalidAmount  = "Invalid amount"
	MsgQueryError     = "Database query error"
	MsgInvalidPIN     = "Invalid PIN"
	MsgInsufficient   = "Insufficient balance"
	MsgInsertFailed   = "Error inserting transaction"
	MsgBalanceFailed  = "Error updating balance"
	MsgTransactionOK  = "Transaction Success"
	MsgInternal       = "Internal Server Error"
)

// Event names on the socket transport.
const (
	EventAttendanceUpdate  = "attendanceUpdate"
	EventTransactionUpdate = "transactionUpdate"
)
