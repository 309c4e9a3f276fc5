// Package regdebug serves an Si7210 register debugger over a websocket.
//
// Clients send JSON commands {"action": ..., "addr": "0xC4", "value": "0x01"}
// and receive one Response per command. Actions:
//
//	get_map   register names and access
//	read      one register
//	read_all  every mapped register
//	write     one writable register
//	field     field strength in µT
//	sleep     put the sensor to sleep
//	init      wake the sensor and push its configuration again
package regdebug

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mikesmitty/si7210"
)

// Device is implemented by *si7210.Dev.
type Device interface {
	ReadRegister(reg uint8) (si7210.Reg, error)
	WriteRegister(reg uint8, v si7210.Reg) error
	MemDump() ([]si7210.Register, error)
	FieldStrength() (int, error)
	Sleep() error
	Wakeup() error
	Opts() si7210.Opts
}

// Command is a client request.
type Command struct {
	Action  string `json:"action"`
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Response is sent for every command.
type Response struct {
	Type       string         `json:"type"` // "register_data", "register_map", "field", "status", "error"
	Address    string         `json:"addr,omitempty"`
	Value      string         `json:"value,omitempty"`
	Binary     string         `json:"binary,omitempty"`
	Registers  []RegisterData `json:"registers,omitempty"`
	Map        []RegisterInfo `json:"register_map,omitempty"`
	MicroTesla *int           `json:"ut,omitempty"`
	Range      string         `json:"range,omitempty"`
	Message    string         `json:"message,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
}

type RegisterData struct {
	Address string `json:"addr"`
	Value   string `json:"value"`
	Binary  string `json:"binary"`
}

type RegisterInfo struct {
	Address string `json:"addr"`
	Name    string `json:"name"`
	Access  string `json:"access"` // "R" or "RW"
}

// Server handles debugger websocket connections. Commands from all
// connections are serialized.
type Server struct {
	dev      Device
	log      *log.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu sync.Mutex
}

// New returns a Server for dev. Connection errors are logged to logger.
func New(dev Device, logger *log.Logger) *Server {
	return &Server{
		dev: dev,
		log: logger,
		upgrader: websocket.Upgrader{
			// The debugger is meant for a bench on a local network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("regdebug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(s.registerMap()); err != nil {
		s.log.Printf("regdebug: error sending register map: %v", err)
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Printf("regdebug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(s.Handle(cmd)); err != nil {
			s.log.Printf("regdebug: write error: %v", err)
			return
		}
	}
}

// Handle executes one command.
func (s *Server) Handle(cmd Command) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp Response
	switch cmd.Action {
	case "get_map":
		return s.registerMap()
	case "read":
		resp = s.handleRead(cmd)
	case "read_all":
		resp = s.handleReadAll()
	case "write":
		resp = s.handleWrite(cmd)
	case "field":
		resp = s.handleField()
	case "sleep":
		resp = s.status("sleeping", s.dev.Sleep())
	case "init":
		resp = s.status("initialized", s.dev.Wakeup())
	default:
		return errorResponse("unknown action: %q", cmd.Action)
	}
	if resp.Type != "error" {
		resp.Timestamp = s.now().Format(time.RFC3339)
	}
	return resp
}

func (s *Server) registerMap() Response {
	var m []RegisterInfo
	for _, r := range si7210.RegisterMap() {
		access := "R"
		if r.Writable {
			access = "RW"
		}
		m = append(m, RegisterInfo{Address: hex(r.Addr), Name: r.Name, Access: access})
	}
	return Response{Type: "register_map", Map: m}
}

func (s *Server) handleRead(cmd Command) Response {
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return errorResponse("invalid address %q: %v", cmd.Address, err)
	}
	v, err := s.dev.ReadRegister(addr)
	if err != nil {
		return errorResponse("read error: %v", err)
	}
	return Response{Type: "register_data", Address: hex(addr), Value: hex(uint8(v)), Binary: v.String()}
}

func (s *Server) handleReadAll() Response {
	regs, err := s.dev.MemDump()
	if err != nil {
		return errorResponse("read all error: %v", err)
	}
	resp := Response{Type: "register_data"}
	for _, r := range regs {
		resp.Registers = append(resp.Registers, RegisterData{
			Address: hex(r.Addr),
			Value:   hex(uint8(r.Value)),
			Binary:  r.Value.String(),
		})
	}
	return resp
}

func (s *Server) handleWrite(cmd Command) Response {
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return errorResponse("invalid address %q: %v", cmd.Address, err)
	}
	v, err := parseByte(cmd.Value)
	if err != nil {
		return errorResponse("invalid value %q: %v", cmd.Value, err)
	}
	if !si7210.Writable(addr) {
		return errorResponse("register %s is not writable", hex(addr))
	}
	if err := s.dev.WriteRegister(addr, si7210.Reg(v)); err != nil {
		return errorResponse("write error: %v", err)
	}
	return Response{
		Type:    "register_data",
		Address: hex(addr),
		Value:   hex(v),
		Binary:  si7210.Reg(v).String(),
		Message: "write successful",
	}
}

func (s *Server) handleField() Response {
	ut, err := s.dev.FieldStrength()
	if err != nil {
		return errorResponse("field error: %v", err)
	}
	return Response{Type: "field", MicroTesla: &ut, Range: s.dev.Opts().Range.String()}
}

func (s *Server) status(status string, err error) Response {
	if err != nil {
		return errorResponse("%s error: %v", status, err)
	}
	return Response{Type: "status", Message: status}
}

func errorResponse(format string, args ...interface{}) Response {
	return Response{Type: "error", Message: fmt.Sprintf(format, args...)}
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return uint8(v), err
}

func hex(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}
