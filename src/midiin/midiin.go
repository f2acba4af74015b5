package midiin

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// Listen opens a MIDI IN port and delivers its raw messages until ctx is
// done. The first port whose name contains port is used, or the first port
// when port is empty. The channel is closed when listening ends; it is never
// written to when no port could be opened.
func Listen(ctx context.Context, port string) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		in, err := selectIn(ins, port)
		if err != nil {
			log.Printf("WARN: %v\n", err)
			return
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			message := make([]byte, len(data))
			copy(message, data)
			select {
			case ch <- message:
			default:
				log.Println("[WARN] MIDI IN buffer is full")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

func selectIn(ins []midi.In, port string) (midi.In, error) {
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	i, err := pickPort(names, port)
	if err != nil {
		return nil, err
	}
	return ins[i], nil
}

// pickPort returns the index of the first name containing port.
func pickPort(names []string, port string) (int, error) {
	if len(names) == 0 {
		return -1, fmt.Errorf("MIDI IN not found")
	}
	if port == "" {
		return 0, nil
	}
	for i, name := range names {
		if strings.Contains(name, port) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("MIDI IN %q not found in %v", port, names)
}
