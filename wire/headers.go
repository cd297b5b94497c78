package wire

// Reserved header keys carried alongside a message's payload bytes.
const (
	HeaderMsgType    = "msg-type"
	HeaderTickID     = "tick-id"
	HeaderInstanceID = "instance-id"
)

// Reserved values for HeaderMsgType, used as sentinels terminating a
// stage's data stream.
const (
	DataDoneMsgType    = "data_done"
	ChangesDoneMsgType = "changes_done"
)
