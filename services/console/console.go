// Package console offers a line-oriented command shell over a serial
// port. Lines are tokenized with shlex, mapped onto bus control topics,
// and the replies are printed back, so a tech with a UART lead can poke
// the panel without any host tooling.
package console

import (
	"context"
	"time"

	"github.com/google/shlex"

	"panelfw-go/bus"
	"panelfw-go/types"
	"panelfw-go/x/fmtx"
	"panelfw-go/x/strconvx"
)

// Port is the serial endpoint the console reads from and writes to.
type Port interface {
	Write(p []byte) (int, error)
	Readable() <-chan struct{}
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
}

const (
	prompt       = "> "
	maxLine      = 256
	replyTimeout = 2 * time.Second
)

type Service struct {
	conn *bus.Connection
	port Port

	domain string
	panel  string
}

// Option adjusts console defaults.
type Option func(*Service)

// WithPanel targets a differently named panel capability.
func WithPanel(domain, name string) Option {
	return func(s *Service) { s.domain, s.panel = domain, name }
}

func New(conn *bus.Connection, port Port, opts ...Option) *Service {
	s := &Service{conn: conn, port: port, domain: "io", panel: "front"}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the reader loop.
func (s *Service) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	s.print("panelfw console; 'help' lists commands\r\n" + prompt)

	buf := make([]byte, 64)
	var line []byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.port.Readable():
		}
		// Bound the blocking read to assist shutdown.
		rctx, rcancel := context.WithTimeout(ctx, 250*time.Millisecond)
		n, _ := s.port.RecvSomeContext(rctx, buf)
		rcancel()
		if n <= 0 {
			continue
		}
		for _, b := range buf[:n] {
			switch b {
			case '\r':
				// ignore; '\n' terminates
			case '\n':
				s.dispatch(ctx, string(line))
				line = line[:0]
				s.print(prompt)
			default:
				if len(line) < maxLine {
					line = append(line, b)
				}
			}
		}
	}
}

func (s *Service) print(msg string) {
	_, _ = s.port.Write([]byte(msg))
}

func (s *Service) printf(format string, a ...any) {
	s.print(fmtx.Sprintf(format, a...))
}

func (s *Service) dispatch(ctx context.Context, line string) {
	args, err := shlex.Split(line)
	if err != nil {
		s.printf("err: %s\r\n", err.Error())
		return
	}
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "help":
		s.print(helpText)
	case "toggle":
		s.cmdToggle(ctx, args[1:])
	case "led":
		s.cmdLED(ctx, args[1:])
	case "pwm":
		s.cmdPWM(ctx, args[1:])
	case "mode":
		s.cmdMode(ctx, args[1:])
	case "draw":
		s.cmdDraw(ctx, args[1:])
	case "show":
		s.cmdShow(ctx)
	case "uptime":
		s.cmdUptime(ctx)
	default:
		s.printf("err: unknown command %q\r\n", args[0])
	}
}

const helpText = "commands:\r\n" +
	"  toggle backlight|mode        cycle a panel function\r\n" +
	"  led <name> on|off|toggle     drive a digital output\r\n" +
	"  pwm <name> <level>           set a PWM duty level\r\n" +
	"  mode normal|inverse          set the display polarity\r\n" +
	"  draw <line> <text>           write a display line\r\n" +
	"  show                         print the panel state\r\n" +
	"  uptime                       print the heartbeat beacon\r\n"

// request sends a control verb and prints the outcome.
func (s *Service) request(ctx context.Context, topic bus.Topic, payload any) {
	rctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	reply, err := s.conn.RequestWait(rctx, s.conn.NewMessage(topic, payload, false))
	if err != nil {
		s.printf("err: %s\r\n", err.Error())
		return
	}
	switch p := reply.Payload.(type) {
	case types.OKReply:
		s.print("ok\r\n")
	case types.ErrorReply:
		s.printf("err: %s\r\n", p.Error)
	default:
		s.print("ok\r\n")
	}
}

func ctrl(domain, kind, name, verb string) bus.Topic {
	return bus.T("hal", "cap", domain, kind, name, "control", verb)
}

func (s *Service) cmdToggle(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.print("usage: toggle backlight|mode\r\n")
		return
	}
	s.request(ctx,
		ctrl(s.domain, string(types.KindPanel), s.panel, "toggle"),
		types.PanelToggle{Function: args[0]})
}

func (s *Service) cmdLED(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.print("usage: led <name> on|off|toggle\r\n")
		return
	}
	name := args[0]
	switch args[1] {
	case "on":
		s.request(ctx, ctrl(s.domain, string(types.KindLED), name, "set"), types.LEDSet{Level: true})
	case "off":
		s.request(ctx, ctrl(s.domain, string(types.KindLED), name, "set"), types.LEDSet{Level: false})
	case "toggle":
		s.request(ctx, ctrl(s.domain, string(types.KindLED), name, "toggle"), nil)
	default:
		s.print("usage: led <name> on|off|toggle\r\n")
	}
}

func (s *Service) cmdPWM(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.print("usage: pwm <name> <level>\r\n")
		return
	}
	level, err := strconvx.ParseUint(args[1], 10, 16)
	if err != nil {
		s.printf("err: bad level %q\r\n", args[1])
		return
	}
	s.request(ctx, ctrl(s.domain, string(types.KindPWM), args[0], "set"), types.PWMSet{Level: uint16(level)})
}

func (s *Service) cmdMode(ctx context.Context, args []string) {
	if len(args) != 1 || (args[0] != string(types.DisplayNormal) && args[0] != string(types.DisplayInverse)) {
		s.print("usage: mode normal|inverse\r\n")
		return
	}
	s.request(ctx,
		ctrl(s.domain, string(types.KindDisplay), "oled", "set_mode"),
		types.DisplaySetMode{Mode: types.DisplayMode(args[0])})
}

func (s *Service) cmdDraw(ctx context.Context, args []string) {
	if len(args) != 2 {
		s.print("usage: draw <line> <text>\r\n")
		return
	}
	line, err := strconvx.ParseUint(args[0], 10, 8)
	if err != nil {
		s.printf("err: bad line %q\r\n", args[0])
		return
	}
	s.request(ctx,
		ctrl(s.domain, string(types.KindDisplay), "oled", "draw_text"),
		types.DisplayDrawText{Line: int(line), Text: args[1]})
}

// cmdShow reads the retained panel value off the bus.
func (s *Service) cmdShow(ctx context.Context) {
	sub := s.conn.Subscribe(bus.T("hal", "cap", s.domain, string(types.KindPanel), s.panel, "value"))
	defer s.conn.Unsubscribe(sub)
	select {
	case <-ctx.Done():
	case <-time.After(replyTimeout):
		s.print("err: no panel state\r\n")
	case m := <-sub.Channel():
		v, ok := m.Payload.(types.PanelValue)
		if !ok {
			s.print("err: no panel state\r\n")
			return
		}
		s.printf("backlight %d%% mode %s indicator %v admitted %d ignored %d\r\n",
			v.BrightnessPct, string(v.Mode), v.IndicatorOn, v.Admitted, v.Ignored)
	}
}

func (s *Service) cmdUptime(ctx context.Context) {
	sub := s.conn.Subscribe(bus.T("sys", "heartbeat"))
	defer s.conn.Unsubscribe(sub)
	select {
	case <-ctx.Done():
	case <-time.After(replyTimeout):
		s.print("err: no heartbeat\r\n")
	case m := <-sub.Channel():
		if hb, ok := m.Payload.(types.Heartbeat); ok {
			s.printf("uptime %ds\r\n", hb.UptimeS)
		}
	}
}
