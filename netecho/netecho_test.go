package netecho

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestEcho(t *testing.T) {
	lis, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer lis.Close()

	talk, err := Dial(lis.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer talk.Close()

	inR, inW := io.Pipe()
	defer inW.Close()
	outR, outW := io.Pipe()

	done := make(chan error, 1)
	go func() { done <- lis.Run(inR, outW) }()

	if err := talk.Send([]byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	buf := make([]byte, 64)
	n, err := outR.Read(buf)
	if err != nil {
		t.Fatalf("read listener output: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("listener received %q, want %q", buf[:n], "hello")
	}

	// The listener learned the sender's address and can answer.
	if err := lis.Send([]byte("again")); err != nil {
		t.Fatalf("reply: %v", err)
	}

	reply := make([]byte, 64)
	talk.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	rn, _, err := talk.conn.ReadFromUDP(reply)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if string(reply[:rn]) != "again" {
		t.Fatalf("talker received %q, want %q", reply[:rn], "again")
	}

	lis.Close()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestSendChunks(t *testing.T) {
	lis, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer lis.Close()

	talk, err := Dial(lis.conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer talk.Close()

	payload := bytes.Repeat([]byte{0xab}, 2*chunkSize+100)
	if err := talk.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// Large payloads are split into datagrams of at most chunkSize.
	var total int
	buf := make([]byte, 2*chunkSize)
	for i := 0; i < 3; i++ {
		lis.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		n, _, err := lis.conn.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("read datagram %v: %v", i, err)
		}
		if n > chunkSize {
			t.Errorf("datagram %v is %v bytes, want at most %v", i, n, chunkSize)
		}
		total += n
	}
	if total != len(payload) {
		t.Errorf("received %v bytes total, want %v", total, len(payload))
	}
}

func TestSendWithoutRemote(t *testing.T) {
	lis, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer lis.Close()

	if err := lis.Send([]byte("nobody home")); err == nil {
		t.Fatal("Send with no known remote did not fail")
	}
}
