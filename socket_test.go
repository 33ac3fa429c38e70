package threadlet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestTCPEchoRoundTrip exercises listen/accept/connect/send/recv together:
// a client connects to a loopback listener, sends a message, and the server
// echoes it back.
func TestTCPEchoRoundTrip(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	addr := NewAddr(127, 0, 0, 1, 0)

	listener, lerr := TCPListen(loop, addr, 16)
	require.Nil(t, lerr)
	bound := listener.LocalAddr()

	var serverErr, clientErr *Error
	var echoed string

	loop.Spawn(func(t *Task) {
		defer listener.Close()
		conn, err := listener.Accept(t, 5000)
		if err != nil {
			serverErr = err
			return
		}
		defer conn.Close()
		buf, err := conn.Recv(t, false, 5000)
		if err != nil {
			serverErr = err
			return
		}
		serverErr = conn.Send(t, []*Buffer{buf}, 5000)
	})

	loop.Spawn(func(t *Task) {
		conn, err := TCPConnect(loop, t, bound, 5000)
		if err != nil {
			clientErr = err
			return
		}
		defer conn.Close()
		out := WrapBuffer([]byte("hello"))
		if err := conn.Send(t, []*Buffer{out}, 5000); err != nil {
			clientErr = err
			return
		}
		buf, err := conn.Recv(t, false, 5000)
		if err != nil {
			clientErr = err
			return
		}
		echoed = string(buf.Bytes())
		loop.Stop()
	})

	runLoopUntilDone(t, loop, 5*time.Second)

	require.Nil(t, serverErr)
	require.Nil(t, clientErr)
	require.Equal(t, "hello", echoed)
}

// TestTCPConnectRefused is scenario 4 (§8): connecting to a closed port
// returns ConnectionRefused within the timeout.
func TestTCPConnectRefused(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)

	// Bind a listener, record its address, then close it immediately so the
	// port is very likely refusing connections (no other process can have
	// claimed it in this window on a loopback interface).
	listener, lerr := TCPListen(loop, NewAddr(127, 0, 0, 1, 0), 1)
	require.Nil(t, lerr)
	addr := listener.LocalAddr()
	require.NoError(t, listener.Close())

	var connErr *Error
	loop.Spawn(func(t *Task) {
		_, connErr = TCPConnect(loop, t, addr, 2000)
		loop.Stop()
	})

	runLoopUntilDone(t, loop, 3*time.Second)

	require.NotNil(t, connErr)
	require.Equal(t, ConnectionRefused, connErr.Kind)
}

// TestAcceptAbortedByClose is scenario 6 (§8): a task parked on accept with
// no timeout is unparked with Aborted when another task closes the server
// socket.
func TestAcceptAbortedByClose(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	listener, lerr := TCPListen(loop, NewAddr(127, 0, 0, 1, 0), 1)
	require.Nil(t, lerr)

	var acceptErr *Error
	loop.Spawn(func(t *Task) {
		_, acceptErr = listener.Accept(t, 0)
	})
	loop.Spawn(func(t *Task) {
		t.loop.parkTimeoutOnly(t, 30)
		listener.Close()
		loop.Stop()
	})

	runLoopUntilDone(t, loop, 3*time.Second)

	require.NotNil(t, acceptErr)
	require.Equal(t, Aborted, acceptErr.Kind)
}

// TestUDPEcho is scenario 2 (§8): task A binds and echoes, task B sends
// "hello" and observes the echo back from A's bound address.
func TestUDPEcho(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	addrA := NewAddr(127, 0, 0, 1, 0)
	sockA, err := UDPCreate(loop, &addrA, false)
	require.Nil(t, err)
	boundA := sockA.LocalAddr()

	var recvErr *Error
	var gotBytes string
	var gotSender Addr

	loop.Spawn(func(t *Task) {
		defer sockA.Close()
		packets, sender, e := sockA.RecvFrom(t, false, 5000)
		if e != nil {
			recvErr = e
			return
		}
		if len(packets) == 0 {
			return
		}
		_ = sockA.SendTo(t, packets[0], sender, 5000)
	})

	loop.Spawn(func(t *Task) {
		sockB, e := UDPCreate(loop, nil, false)
		if e != nil {
			recvErr = e
			return
		}
		defer sockB.Close()
		out := WrapBuffer([]byte("hello"))
		if e := sockB.SendTo(t, out, boundA, 5000); e != nil {
			recvErr = e
			return
		}
		packets, sender, e := sockB.RecvFrom(t, false, 5000)
		if e != nil {
			recvErr = e
			return
		}
		if len(packets) > 0 {
			gotBytes = string(packets[0].Bytes())
			gotSender = sender
		}
		loop.Stop()
	})

	runLoopUntilDone(t, loop, 5*time.Second)

	require.Nil(t, recvErr)
	require.Equal(t, "hello", gotBytes)
	require.Equal(t, boundA, gotSender)
}

// TestUDPSendToBatch exercises the batched send path (sendmmsg on Linux,
// per-packet fallback elsewhere): three datagrams sent in one SendToBatch
// call must all be collectible by the receiver, fully drained on the sender
// side.
func TestUDPSendToBatch(t *testing.T) {
	t.Parallel()

	loop := newTestLoop(t)
	addrA := NewAddr(127, 0, 0, 1, 0)
	sockA, err := UDPCreate(loop, &addrA, false)
	require.Nil(t, err)
	boundA := sockA.LocalAddr()

	var recvErr *Error
	var gotPackets []string

	loop.Spawn(func(t *Task) {
		defer sockA.Close()
		for len(gotPackets) < 3 {
			packets, _, e := sockA.RecvFrom(t, true, 2000)
			if e != nil {
				recvErr = e
				return
			}
			for _, p := range packets {
				gotPackets = append(gotPackets, string(p.Bytes()))
			}
		}
		loop.Stop()
	})

	loop.Spawn(func(t *Task) {
		sockB, e := UDPCreate(loop, nil, false)
		if e != nil {
			recvErr = e
			return
		}
		defer sockB.Close()
		bufs := []*Buffer{
			WrapBuffer([]byte("one")),
			WrapBuffer([]byte("two")),
			WrapBuffer([]byte("three")),
		}
		if e := sockB.SendToBatch(t, bufs, boundA, 2000); e != nil {
			recvErr = e
			return
		}
		for _, b := range bufs {
			if !b.Drained() {
				recvErr = New(InvalidParam, "buffer not fully drained by SendToBatch")
				return
			}
		}
	})

	runLoopUntilDone(t, loop, 5*time.Second)

	require.Nil(t, recvErr)
	require.ElementsMatch(t, []string{"one", "two", "three"}, gotPackets)
}
