package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"google.golang.org/grpc"

	"github.com/arcfix-nav/driftfilter/internal/config"
	"github.com/arcfix-nav/driftfilter/internal/drift"
	"github.com/arcfix-nav/driftfilter/internal/gpsserial"
	"github.com/arcfix-nav/driftfilter/internal/httputil"
	"github.com/arcfix-nav/driftfilter/internal/report"
	"github.com/arcfix-nav/driftfilter/internal/serialmux"
	"github.com/arcfix-nav/driftfilter/internal/storage/sqlite"
	"github.com/arcfix-nav/driftfilter/internal/streamapi"
	"github.com/arcfix-nav/driftfilter/internal/units"
)

// runServe runs the long-lived trio the teacher's cmd/radar.go wires up
// around one serial mux: an HTTP dashboard, a gRPC stream server, and
// (unless disabled) a GNSS serial reader feeding its own detector. All
// three stop together on SIGINT/SIGTERM, mirroring radar.go's
// signal.NotifyContext + sync.WaitGroup shutdown.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("listen", ":8080", "HTTP dashboard listen address")
	grpcListen := fs.String("grpc-listen", ":50051", "gRPC stream server listen address")
	configFile := fs.String("config", config.DefaultDetectorConfigPath, "path to detector tuning JSON")
	dbPath := fs.String("db-path", "driftfilter.db", "path to sqlite DB file")
	disableSerial := fs.Bool("disable-serial", true, "disable the GNSS serial reader (dashboard/gRPC only)")
	mockSerial := fs.Bool("mock-serial", false, "feed the serial reader a single repeating mock fix line")
	serialPort := fs.String("serial-port", "/dev/ttyUSB0", "serial port the GNSS receiver is attached to")
	timezone := fs.String("timezone", "", "timezone to pin on the GNSS receiver via PMTK_SET_TZ (defaults to the host's local zone)")
	fs.Parse(args)

	if *timezone != "" && !units.IsTimezoneValid(*timezone) {
		log.Fatalf("serve: invalid -timezone %q", *timezone)
	}

	tuning, err := config.LoadDetectorTuning(*configFile)
	if err != nil {
		log.Fatalf("serve: failed to load detector config from %s: %v", *configFile, err)
	}
	cfg := drift.NewConfig(tuning)

	db, err := sqlite.OpenAndMigrate(*dbPath)
	if err != nil {
		log.Fatalf("serve: failed to open %s: %v", *dbPath, err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	streamServer := streamapi.NewServer(cfg)

	mode := gpsserial.ModeDisabled
	switch {
	case *mockSerial:
		mode = gpsserial.ModeMock
	case !*disableSerial:
		mode = gpsserial.ModeReal
	}

	reader, err := gpsserial.NewReader(mode, *serialPort, serialmux.PortOptions{}, "39.9,116.4,0\n", *timezone, drift.NewCore(cfg))
	if err != nil {
		log.Fatalf("serve: failed to construct serial reader: %v", err)
	}
	if err := reader.Initialize(); err != nil {
		log.Printf("serve: serial initialize failed (continuing without it): %v", err)
	}
	defer reader.Close()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := reader.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("serve: serial reader terminated: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		lis, err := net.Listen("tcp", *grpcListen)
		if err != nil {
			log.Printf("serve: grpc listen %s: %v", *grpcListen, err)
			return
		}
		grpcServer := grpc.NewServer()
		streamapi.RegisterService(grpcServer, streamServer)
		go func() {
			<-ctx.Done()
			grpcServer.GracefulStop()
		}()
		log.Printf("serve: gRPC listening on %s", *grpcListen)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("serve: grpc server error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		httpServer := &http.Server{Addr: *listen, Handler: newDashboardMux(db)}
		errCh := make(chan error, 1)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
				return
			}
			errCh <- nil
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("serve: http shutdown error: %v", err)
			}
		case err := <-errCh:
			if err != nil {
				log.Printf("serve: http server error: %v", err)
			}
		}
	}()

	log.Printf("serve: running (http=%s grpc=%s db=%s)", *listen, *grpcListen, *dbPath)
	wg.Wait()
	log.Printf("serve: shutdown complete")
}

// newDashboardMux builds the serve subcommand's HTTP surface: an HTML
// dashboard at "/" and a JSON status endpoint at "/api/status", both reading
// the most recently filtered trajectory from db.
func newDashboardMux(db *sqlite.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		history, result, err := latestDashboardData(db)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		html, err := report.RenderDashboardHTML("driftfilter", result, history)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		_, result, err := latestDashboardData(db)
		if err != nil {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, result.Statistics)
	})
	return mux
}
