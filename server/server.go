package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wdmatthews/uno/broadcast"
	"github.com/wdmatthews/uno/coordinator"
	"github.com/wdmatthews/uno/game"
	"github.com/wdmatthews/uno/logger"
	"github.com/wdmatthews/uno/monitor"
	"github.com/wdmatthews/uno/network"
	"github.com/wdmatthews/uno/persistence"
	uno_rpc "github.com/wdmatthews/uno/rpc"
	"github.com/wdmatthews/uno/services"
	"github.com/wdmatthews/uno/session"
	"github.com/wdmatthews/uno/timer"
)

type GameServer struct {
	addr           string
	metricsAddr    string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	coordinator    *coordinator.Coordinator
	recordService  *services.RecordService
	broadcaster    broadcast.Broadcaster
	rpcServer      *uno_rpc.Server
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	idleTimeout    time.Duration
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr, metricsAddr string, db persistence.Database, engine *game.Engine, idleTimeout time.Duration) *GameServer {
	s := &GameServer{
		addr:           addr,
		metricsAddr:    metricsAddr,
		sessionManager: session.NewManager(),
		coordinator:    coordinator.New(db, engine),
		recordService:  services.NewRecordService(db),
		monitor:        monitor.NewMonitor("uno"),
		timers:         timer.NewTimerManager(),
		idleTimeout:    idleTimeout,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := uno_rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := uno_rpc.NewAdminService(db, s.recordService)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.metricsAddr)

	if s.idleTimeout > 0 {
		s.timers.AddTimer(s.idleTimeout, s.idleTimeout, s.sweepIdleSessions)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// sweepIdleSessions closes connections with no activity within the idle
// timeout. The closed connection's read loop then runs the normal
// disconnect path, which leaves any joined room.
func (s *GameServer) sweepIdleSessions() {
	now := time.Now()
	for _, sess := range s.sessionManager.All() {
		if sess.IdleSince(now) > s.idleTimeout {
			logger.Log.Infof("Closing idle session %s", sess.GetID())
			sess.Close()
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncConnectedParticipants()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecConnectedParticipants()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	sess.Touch()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch above is the whole point of a heartbeat.
	case network.MsgTypeRequestJoin:
		s.handleJoin(sess, packet)
	case network.MsgTypeRequestLeave:
		s.handleLeave(sess)
	case network.MsgTypeReady:
		s.handleReady(sess)
	case network.MsgTypePlayCard:
		s.handlePlayCard(sess, packet)
	case network.MsgTypeDrawCard:
		s.handleDrawCard(sess)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		return
	}

	s.monitor.IncActionsProcessed()
	s.monitor.ObserveActionLatency(time.Since(start))
}

type joinRequest struct {
	RoomCode string `json:"room_code"`
}

type playRequest struct {
	CardIndex int `json:"card_index"`
}

func (s *GameServer) handleJoin(sess *session.Session, packet *network.Packet) {
	var req joinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	if !coordinator.ValidRoomCode(req.RoomCode) {
		return
	}
	// Already in a room: nothing to do, but still answer the caller.
	if sess.GetRoomCode() != "" {
		s.send(sess, network.MsgTypeJoinResult, coordinator.JoinOutcome{})
		return
	}

	outcome, err := s.coordinator.Join(context.Background(), req.RoomCode, sess.GetID())
	if err != nil {
		logger.Log.Errorf("Join failed for room %s: %v", req.RoomCode, err)
		return
	}

	if outcome.Joined {
		sess.SetRoomCode(req.RoomCode)
		logger.Log.Infof("Session %s joined room %s", sess.GetID(), req.RoomCode)
	}
	if outcome.Created {
		s.monitor.IncActiveRooms()
	}
	s.send(sess, network.MsgTypeJoinResult, outcome)
}

func (s *GameServer) handleLeave(sess *session.Session) {
	code := sess.GetRoomCode()
	if code == "" {
		return
	}

	outcome, err := s.coordinator.Leave(context.Background(), code, sess.GetID())
	if err != nil {
		logger.Log.Errorf("Leave failed for room %s: %v", code, err)
		return
	}

	sess.SetRoomCode("")
	s.send(sess, network.MsgTypeLeaveResult, struct{}{})
	s.afterLeave(code, outcome)
}

// handleDisconnect runs a leave for the closing session, without the
// request-leave-result reply nobody is listening for.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	code := sess.GetRoomCode()
	if code == "" {
		return
	}

	outcome, err := s.coordinator.Leave(context.Background(), code, sess.GetID())
	if err != nil {
		logger.Log.Errorf("Leave on disconnect failed for room %s: %v", code, err)
		return
	}

	sess.SetRoomCode("")
	s.afterLeave(code, outcome)
}

func (s *GameServer) afterLeave(code string, outcome coordinator.LeaveOutcome) {
	if !outcome.Left {
		return
	}
	if outcome.Deleted {
		s.monitor.DecActiveRooms()
		return
	}

	payload := participantLeftPayload{CurrentTurn: outcome.CurrentTurn}
	s.broadcaster.BroadcastToRoomFunc(code, network.MsgTypeParticipantLeft, func(participantID string) []byte {
		payload.Participants = viewsFor(outcome.Participants, participantID)
		data, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		return data
	})
}

func (s *GameServer) handleReady(sess *session.Session) {
	code := sess.GetRoomCode()
	if code == "" {
		return
	}

	outcome, err := s.coordinator.Ready(context.Background(), code, sess.GetID())
	if err != nil {
		logger.Log.Errorf("Ready failed for room %s: %v", code, err)
		return
	}

	s.send(sess, network.MsgTypeReadyResult, struct{}{})

	if outcome.Start == nil {
		return
	}

	payload := gameStartedPayload{
		PileCard:      outcome.Start.PileCard,
		CurrentTurn:   outcome.Start.CurrentTurn,
		TurnDirection: outcome.Start.TurnDirection,
	}
	s.broadcaster.BroadcastToRoomFunc(code, network.MsgTypeGameStarted, func(participantID string) []byte {
		payload.Participants = viewsFor(outcome.Start.Participants, participantID)
		data, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		return data
	})
}

func (s *GameServer) handlePlayCard(sess *session.Session, packet *network.Packet) {
	var req playRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	code := sess.GetRoomCode()
	if code == "" {
		return
	}

	outcome, err := s.coordinator.PlayCard(context.Background(), code, sess.GetID(), req.CardIndex)
	if err != nil {
		logger.Log.Errorf("Play card failed for room %s: %v", code, err)
		return
	}
	if !outcome.Played {
		return
	}

	actorID := sess.GetID()
	s.broadcaster.BroadcastToRoomFunc(code, network.MsgTypeCardPlayed, func(participantID string) []byte {
		data, err := json.Marshal(cardPlayedViewFor(outcome, actorID, participantID))
		if err != nil {
			return nil
		}
		return data
	})

	if outcome.Winner != nil {
		winner := *outcome.Winner
		remaining := outcome.Remaining
		go func() {
			if err := s.recordService.RecordWin(context.Background(), code, winner, remaining); err != nil {
				logger.Log.Errorf("Failed to record win in room %s: %v", code, err)
			}
		}()
	}
}

func (s *GameServer) handleDrawCard(sess *session.Session) {
	code := sess.GetRoomCode()
	if code == "" {
		return
	}

	outcome, err := s.coordinator.DrawCard(context.Background(), code, sess.GetID())
	if err != nil {
		logger.Log.Errorf("Draw card failed for room %s: %v", code, err)
		return
	}
	if !outcome.Drawn {
		return
	}

	actorID := sess.GetID()
	s.broadcaster.BroadcastToRoomFunc(code, network.MsgTypeCardDrawn, func(participantID string) []byte {
		data, err := json.Marshal(cardDrawnViewFor(outcome, actorID, participantID))
		if err != nil {
			return nil
		}
		return data
	})
}

func (s *GameServer) send(sess *session.Session, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := sess.Send(msgID, data); err != nil {
		logger.Log.Warnf("Failed to send message %d to session %s: %v", msgID, sess.GetID(), err)
	}
}
