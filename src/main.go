package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/jinjor/desktop-synth/src/control"
	"github.com/jinjor/desktop-synth/src/midiin"
	"github.com/jinjor/desktop-synth/src/sink"
	"github.com/jinjor/desktop-synth/src/synth"
	"golang.org/x/sync/errgroup"
)

var (
	configPath   = flag.String("config", "", "path to a JSON configuration file")
	sockFileName = flag.String("sock", "/tmp/desktop-synth.sock", "path to the IPC socket")
	midiPort     = flag.String("midi", "", "MIDI IN port name to listen to (first port if empty, \"none\" to disable)")
	spectrum     = flag.Bool("spectrum", false, "send spectrum reports along with peak reports")
)

var (
	// errOff stops the daemon after an "off" command.
	errOff = errors.New("engine turned off")
	// errDisconnected stops the daemon when the client hangs up.
	errDisconnected = errors.New("client disconnected")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	config := synth.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = synth.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}
	out, err := sink.NewDefault()
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	engine, err := synth.New(config, out)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer func() {
		if engine.Closed() {
			return
		}
		if err := engine.Off(); err != nil {
			log.Printf("error while turning off: %v", err)
		}
	}()
	controller := control.NewController(engine, control.DefaultOctave)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, *sockFileName, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		commandCh := make(chan []string, 64)
		g.Go(func() error {
			return engine.Run(ctx)
		})
		g.Go(func() error {
			// unblock the reader
			<-ctx.Done()
			return conn.SetReadDeadline(time.Now())
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, commandCh)
		})
		if *midiPort != "none" {
			g.Go(func() error {
				return receiveMIDI(ctx, midiin.Listen(ctx, *midiPort), commandCh)
			})
		}
		g.Go(func() error {
			return processCommands(ctx, conn, controller, commandCh)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, engine)
		})
		return g.Wait()
	})
	if err != nil && !errors.Is(err, errOff) && !errors.Is(err, errDisconnected) {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			log.Println("Client disconnected")
			return errDisconnected
		}
		if ctx.Err() != nil {
			log.Println("Connection interrupted")
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		log.Printf("received: %s\n", string(line))
		command, err := control.Parse(string(line))
		line = []byte{}
		if err != nil {
			log.Printf("error: %v\n", err)
			continue
		}
		select {
		case <-ctx.Done():
			break loop
		case commandCh <- command:
		}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func receiveMIDI(ctx context.Context, midiCh <-chan []byte, commandCh chan<- []string) error {
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case data, ok := <-midiCh:
			if !ok {
				break loop
			}
			command, ok := control.FromMIDI(data)
			if !ok {
				continue
			}
			select {
			case <-ctx.Done():
				break loop
			case commandCh <- command:
			}
		}
	}
	log.Println("receiveMIDI() ended.")
	return nil
}

// processCommands is the only goroutine driving the engine.
func processCommands(ctx context.Context, conn net.Conn, controller *control.Controller, commandCh <-chan []string) error {
	for {
		select {
		case <-ctx.Done():
			log.Println("processCommands() interrupted")
			return nil
		case command := <-commandCh:
			reply, err := controller.Apply(command)
			if err != nil {
				log.Printf("error: %v\n", err)
				reply = control.Format("error", err.Error())
			}
			if reply != "" {
				if _, err := conn.Write([]byte(reply + "\n")); err != nil {
					return err
				}
			}
			if command[0] == "off" && err == nil {
				return errOff
			}
		}
	}
}

func sendReports(ctx context.Context, conn net.Conn, engine *synth.Engine) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	last := -1.0
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			peak := engine.Peak()
			if peak == last {
				continue
			}
			last = peak
			s := "peak " + strconv.FormatFloat(peak, 'f', 6, 64) + "\n"
			if *spectrum {
				s += control.FormatSpectrum(engine.Spectrum()) + "\n"
			}
			if _, err := conn.Write([]byte(s)); err != nil {
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
