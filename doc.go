// Package threadlet is a cross-platform network runtime whose core is a
// cooperative green-thread scheduler sitting on top of an OS
// readiness-polling event loop (epoll on Linux, kqueue on macOS/BSD, WSAPoll
// on Windows). Application code runs as straight-line "blocking" code inside
// small user-scheduled tasks ("threadlets"); whenever a task would block on
// a socket operation or timeout, the runtime transparently parks it,
// registers interest with the OS poller, and resumes it when the
// descriptor becomes ready or the deadline fires.
//
// # Architecture
//
// A [Loop] is the per-OS-thread driver: it owns a [Poller] (platform
// readiness mechanism), a [TimeoutHeap], a [WaiterRegistry], and a ready
// [TaskQueue]. [Task] values are cooperative units of execution created
// with [NewTask] and scheduled with [Task.Resume]; they park on socket
// operations via the blocking-style API in socket.go, which internally
// calls [Loop.WaitFD].
//
// A task is pinned to the loop that first scheduled it for its entire
// lifetime; it never migrates to another loop or OS thread. The only
// ordering guarantee is FIFO within one loop's ready queue.
//
// # Platform support
//
// I/O polling is implemented using platform-native mechanisms:
//   - Linux: epoll, eventfd for cross-thread wakeup
//   - Darwin/BSD: kqueue, self-pipe for cross-thread wakeup
//   - Windows: WSAPoll over plain nonblocking Winsock sockets, a loopback
//     UDP socket pair for cross-thread wakeup
//
// # Thread safety
//
// Per-loop state (ready queue, waiter registry, timeout heap, current
// task) is never accessed off its owning goroutine. [Loop.Stop] is the one
// method safe to call from any goroutine; it flips the running flag and
// wakes the poller. Cross-thread sharing of data uses [HandleTable], the
// only data structure in this package with multiple concurrent writers.
//
// # Usage
//
//	loop, err := threadlet.NewLoop()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer loop.Close()
//
//	loop.Spawn(func(t *threadlet.Task) {
//	    sock, err := threadlet.TCPConnect(loop, t, addr, 5000)
//	    ...
//	})
//
//	loop.Run()
package threadlet
