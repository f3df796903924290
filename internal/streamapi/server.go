package streamapi

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/arcfix-nav/driftfilter/internal/drift"
	"github.com/arcfix-nav/driftfilter/internal/stats"
)

// session holds one client's detector instance plus its marker fan-out
// channel. One session exists per client_id, mirroring the teacher's
// per-client clientStream registered in its Publisher (SPEC_FULL.md §5:
// "one detector per client/port... coordinated with a sync.Mutex per
// instance" — Core already owns that mutex, so the session just pins a
// Core to a client_id).
type session struct {
	detector *drift.Core
	markerCh chan stats.Marker
}

// Server implements the manually-described DriftFilter gRPC service. Config
// is the tuning applied to every newly created session's detector.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*session
	cfg      drift.Config
}

// NewServer creates a Server whose sessions are tuned with cfg.
func NewServer(cfg drift.Config) *Server {
	return &Server{
		sessions: make(map[string]*session),
		cfg:      cfg,
	}
}

func (s *Server) sessionFor(clientID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[clientID]
	if !ok {
		sess = &session{
			detector: drift.NewCore(s.cfg),
			markerCh: make(chan stats.Marker, 32),
		}
		s.sessions[clientID] = sess
		log.Printf("[streamapi] session created: client=%s", clientID)
	}
	return sess
}

// DropSession discards a client's detector and closes its marker channel,
// which ends a StreamMarkers loop reading from it. Nothing in this module
// calls it; without it a session lives as long as the Server.
func (s *Server) DropSession(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[clientID]; ok {
		close(sess.markerCh)
		delete(s.sessions, clientID)
		log.Printf("[streamapi] session dropped: client=%s", clientID)
	}
}

func clientIDFromStruct(req *structpb.Struct) (string, error) {
	if req == nil {
		return "", status.Error(codes.InvalidArgument, "streamapi: nil request")
	}
	v, ok := req.GetFields()["client_id"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "streamapi: request missing client_id")
	}
	id := v.GetStringValue()
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "streamapi: client_id must be non-empty")
	}
	return id, nil
}

// ProcessFix applies a single fix to the caller's session detector and
// returns the accept/reject decision plus the resulting snapshot.
func (s *Server) ProcessFix(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	clientID, err := clientIDFromStruct(req)
	if err != nil {
		return nil, err
	}
	f, err := structToFix(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sess := s.sessionFor(clientID)
	rebuildsBefore := sess.detector.Status().RebuildCount
	decision := sess.detector.ProcessFix(f)
	snap := sess.detector.Status()

	if snap.RebuildCount > rebuildsBefore {
		s.publishRebuildMarkers(sess, snap)
	}

	return decisionResponse(decision == drift.Accepted, snap), nil
}

// publishRebuildMarkers best-effort notifies StreamMarkers subscribers of
// the most recent rebuild. Slow or absent subscribers never block
// ProcessFix: a full channel drops the marker, same trade-off as the
// teacher's frame channel under a slow client.
func (s *Server) publishRebuildMarkers(sess *session, snap stats.Snapshot) {
	if len(snap.RebuildPositions) == 0 {
		return
	}
	last := snap.RebuildPositions[len(snap.RebuildPositions)-1]
	marker := stats.Marker{
		Kind:        stats.KindRebuild,
		Position:    last,
		Description: "base point rebuilt",
		TimeMs:      last.TimeMs,
	}
	select {
	case sess.markerCh <- marker:
	default:
		log.Printf("[streamapi] marker channel full, dropping rebuild marker")
	}
}

// ProcessTrajectory runs an entire trajectory through a fresh detector
// seeded with the caller's tuning and returns summary counts, mirroring
// drift.Core.ProcessTrajectory. Unlike ProcessFix this does not touch the
// client's running session — a trajectory batch is an offline replay, not
// live telemetry.
func (s *Server) ProcessTrajectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fixes, err := structToFixes(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	core := drift.NewCore(s.cfg)
	result := core.ProcessTrajectory(fixes)
	return trajectoryResponse(result), nil
}

// markerStream is the minimal subset of grpc.ServerStream StreamMarkers
// needs, narrowed for testability without a live grpc.Server.
type markerStream interface {
	Context() context.Context
	SendMsg(m interface{}) error
}

// StreamMarkers streams markers produced by a client's session as
// ProcessFix calls trigger rebuilds, until the client disconnects or the
// stream context is cancelled. Grounded on the teacher's streamFromPublisher
// select-on-ctx.Done()-and-channel loop in grpc_server.go, without the
// cooldown/skip logic there — one marker is tiny compared to a LiDAR frame,
// so there is nothing worth shedding.
func (s *Server) StreamMarkers(req *structpb.Struct, stream markerStream) error {
	clientID, err := clientIDFromStruct(req)
	if err != nil {
		return err
	}
	sess := s.sessionFor(clientID)

	log.Printf("[streamapi] StreamMarkers started: client=%s", clientID)
	var sent uint64
	lastLog := time.Now()
	const logInterval = 30 * time.Second

	for {
		select {
		case <-stream.Context().Done():
			log.Printf("[streamapi] StreamMarkers closed: client=%s markers_sent=%d", clientID, sent)
			return stream.Context().Err()
		case marker, ok := <-sess.markerCh:
			if !ok {
				return nil
			}
			if err := stream.SendMsg(markerToStruct(marker)); err != nil {
				return fmt.Errorf("streamapi: send marker: %w", err)
			}
			sent++
			if time.Since(lastLog) >= logInterval {
				log.Printf("[streamapi] client=%s markers_sent=%d", clientID, sent)
				lastLog = time.Now()
			}
		}
	}
}

func markerToStruct(m stats.Marker) *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]interface{}{
		"kind":        string(m.Kind),
		"wire_kind":   m.Kind.WireKind(),
		"description": m.Description,
		"time_ms":     float64(m.TimeMs),
		"lat":         m.Position.Lat,
		"lng":         m.Position.Lng,
	})
	return s
}
