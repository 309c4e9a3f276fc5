package regdebug

import (
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mikesmitty/si7210"
)

type fakeDevice struct {
	regs   map[uint8]uint8
	field  int
	err    error
	asleep bool
	wakes  int
}

func newFakeDevice() *fakeDevice {
	regs := map[uint8]uint8{}
	for _, r := range si7210.RegisterMap() {
		regs[r.Addr] = r.Addr ^ 0xFF
	}
	return &fakeDevice{regs: regs, field: -125}
}

func (f *fakeDevice) ReadRegister(reg uint8) (si7210.Reg, error) {
	return si7210.Reg(f.regs[reg]), f.err
}

func (f *fakeDevice) WriteRegister(reg uint8, v si7210.Reg) error {
	if f.err != nil {
		return f.err
	}
	f.regs[reg] = uint8(v)
	return nil
}

func (f *fakeDevice) MemDump() ([]si7210.Register, error) {
	if f.err != nil {
		return nil, f.err
	}
	var regs []si7210.Register
	for _, r := range si7210.RegisterMap() {
		regs = append(regs, si7210.Register{Addr: r.Addr, Value: si7210.Reg(f.regs[r.Addr])})
	}
	return regs, nil
}

func (f *fakeDevice) FieldStrength() (int, error) { return f.field, f.err }
func (f *fakeDevice) Opts() si7210.Opts           { return *si7210.DefaultOptions() }

func (f *fakeDevice) Sleep() error {
	f.asleep = true
	return f.err
}

func (f *fakeDevice) Wakeup() error {
	f.asleep = false
	f.wakes++
	return f.err
}

func newTestServer(dev Device) *Server {
	s := New(dev, log.New(io.Discard, "", 0))
	s.now = func() time.Time { return time.Date(2020, 7, 30, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestHandle(t *testing.T) {
	dev := newFakeDevice()
	s := newTestServer(dev)

	resp := s.Handle(Command{Action: "read", Address: "0xC0"})
	if resp.Type != "register_data" || resp.Address != "0xC0" || resp.Value != "0x3F" || resp.Binary != "00111111" {
		t.Errorf("read = %+v", resp)
	}
	if resp.Timestamp != "2020-07-30T00:00:00Z" {
		t.Errorf("timestamp = %q", resp.Timestamp)
	}

	resp = s.Handle(Command{Action: "write", Address: "0xCD", Value: "0x19"})
	if resp.Type != "register_data" || dev.regs[0xCD] != 0x19 {
		t.Errorf("write = %+v, register = %#02x", resp, dev.regs[0xCD])
	}

	resp = s.Handle(Command{Action: "read_all"})
	if len(resp.Registers) != 21 || resp.Registers[13].Address != "0xCD" || resp.Registers[13].Binary != "00011001" {
		t.Errorf("read_all = %+v", resp.Registers)
	}

	resp = s.Handle(Command{Action: "field"})
	if resp.Type != "field" || resp.MicroTesla == nil || *resp.MicroTesla != -125 || resp.Range != "20mT" {
		t.Errorf("field = %+v", resp)
	}

	if resp = s.Handle(Command{Action: "sleep"}); resp.Type != "status" || !dev.asleep {
		t.Errorf("sleep = %+v", resp)
	}
	if resp = s.Handle(Command{Action: "init"}); resp.Type != "status" || dev.asleep || dev.wakes != 1 {
		t.Errorf("init = %+v", resp)
	}

	resp = s.Handle(Command{Action: "get_map"})
	if len(resp.Map) != 21 || resp.Map[0].Access != "R" || resp.Map[4].Access != "RW" {
		t.Errorf("get_map = %+v", resp.Map)
	}
}

func TestHandle_errors(t *testing.T) {
	dev := newFakeDevice()
	s := newTestServer(dev)

	tests := []struct {
		cmd  Command
		want string
	}{
		{Command{Action: "explode"}, "unknown action"},
		{Command{Action: "read", Address: "C0"}, "invalid address"},
		{Command{Action: "read", Address: "0x100"}, "invalid address"},
		{Command{Action: "write", Address: "0xC0", Value: "0x00"}, "not writable"},
		{Command{Action: "write", Address: "0xC4", Value: "zero"}, "invalid value"},
	}
	for _, tt := range tests {
		resp := s.Handle(tt.cmd)
		if resp.Type != "error" || !strings.Contains(resp.Message, tt.want) {
			t.Errorf("Handle(%+v) = %+v, want error %q", tt.cmd, resp, tt.want)
		}
	}
	if dev.regs[0xC0] != 0x3F {
		t.Error("read-only register was written")
	}

	dev.err = errors.New("nack")
	for _, action := range []string{"read_all", "field", "sleep", "init"} {
		resp := s.Handle(Command{Action: action, Address: "0xC0"})
		if resp.Type != "error" || !strings.Contains(resp.Message, "nack") {
			t.Errorf("%s = %+v, want bus error", action, resp)
		}
	}
}

func TestServeHTTP(t *testing.T) {
	srv := httptest.NewServer(newTestServer(newFakeDevice()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Type != "register_map" || len(resp.Map) != 21 {
		t.Fatalf("first message = %+v, want the register map", resp)
	}

	if err := conn.WriteJSON(Command{Action: "read", Address: "0xE3"}); err != nil {
		t.Fatal(err)
	}
	resp = Response{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Value != "0x1C" {
		t.Errorf("read 0xE3 = %+v", resp)
	}
}
