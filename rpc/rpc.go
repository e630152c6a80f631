package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wdmatthews/uno/logger"
	"github.com/wdmatthews/uno/persistence"
	"github.com/wdmatthews/uno/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the
// caller through the net/rpc package.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes room inspection over net/rpc.
type AdminService struct {
	db      persistence.Database
	records *services.RecordService
}

// NewAdminService creates a new AdminService.
func NewAdminService(db persistence.Database, records *services.RecordService) *AdminService {
	return &AdminService{db: db, records: records}
}

type RoomSummaryArgs struct {
	RoomCode string
}

type RoomSummaryReply struct {
	Found        bool
	Participants []string
	Started      bool
	CurrentTurn  string
	TotalGames   int64
	LastWinner   string
}

// RoomSummary reports the current occupants of a room plus its finished
// game stats. An unknown room code yields Found=false, not an error.
func (a *AdminService) RoomSummary(args *RoomSummaryArgs, reply *RoomSummaryReply) error {
	ctx := context.Background()

	room, err := a.db.LoadRoom(ctx, args.RoomCode)
	if err != nil && !errors.Is(err, persistence.ErrRoomNotFound) {
		return err
	}

	if room != nil {
		reply.Found = true
		reply.Started = room.Started
		reply.CurrentTurn = room.CurrentTurn
		for _, p := range room.Participants {
			reply.Participants = append(reply.Participants, p.Name)
		}
	}

	stats, err := a.records.RoomStats(ctx, args.RoomCode)
	if err != nil {
		return err
	}
	reply.TotalGames = stats.TotalGames
	reply.LastWinner = stats.LastWinner
	return nil
}
