package network

// 消息ID：1xx 客户端请求，2xx 仅回给发起者，3xx 房间广播
const (
	MsgTypeHeartbeat = 1

	MsgTypeRequestJoin  = 101
	MsgTypeRequestLeave = 102
	MsgTypeReady        = 103
	MsgTypePlayCard     = 104
	MsgTypeDrawCard     = 105

	MsgTypeJoinResult  = 201
	MsgTypeLeaveResult = 202
	MsgTypeReadyResult = 203

	MsgTypeGameStarted     = 301
	MsgTypeCardPlayed      = 302
	MsgTypeCardDrawn       = 303
	MsgTypeParticipantLeft = 304
)
