package engine

// DeviceReply is the JSON body sent back to a device.
type DeviceReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ViewMessage is the banner shown above the transaction form.
type ViewMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AutoFill prefills the transaction form fields.
type AutoFill struct {
	CardUID string `json:"card_uid"`
	PIN     string `json:"pin"`
	Amount  string `json:"amount"`
}

// ViewReply is the data bound to the transaction form template.
type ViewReply struct {
	Message  *ViewMessage
	AutoFill *AutoFill
}

// Reply is either a DeviceReply or a ViewReply; exactly one is set.
type Reply struct {
	Device *DeviceReply
	View   *ViewReply
}

// ReplyFor turns a debit outcome into the reply variant its origin expects.
func ReplyFor(origin Origin, receipt Receipt, err error) Reply {
	status, text := "success", receipt.Message
	if err != nil {
		status, text = "error", MessageOf(err)
	} else if text == "" {
		text = MsgTransactionOK
	}

	if origin == OriginDevice {
		return Reply{Device: &DeviceReply{Status: status, Message: text}}
	}
	return Reply{View: &ViewReply{Message: &ViewMessage{Type: status, Text: text}}}
}

// FormView builds the form state from query parameters. A banner appears
// only when both status and message are given, and the fields are
// prefilled only when all three are.
func FormView(status, message, cardUID, pin, amount string) ViewReply {
	var view ViewReply
	if status != "" && message != "" {
		kind := "error"
		if status == "success" {
			kind = "success"
		}
		view.Message = &ViewMessage{Type: kind, Text: message}
	}
	if cardUID != "" && pin != "" && amount != "" {
		view.AutoFill = &AutoFill{CardUID: cardUID, PIN: pin, Amount: amount}
	}
	return view
}
