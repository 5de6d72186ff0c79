// Package serial provides a minimal serial transport for talking to the
// avionics gateway over USB CDC.
//
// On Linux the port is driven directly through termios and poll(2), with a
// self-pipe so that Close wakes a pending Read immediately. Other platforms
// use go.bug.st/serial. Both backends share the same contract:
//
//   - Read waits at most Config.ReadTimeout and returns 0, nil when no data
//     arrived, so a reader loop can check its own stop condition regularly
//   - Read and Write may be called concurrently from two goroutines
//   - after Close, Read and Write return ErrClosed and Close is a no-op
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{
//	    Device:   "/dev/ttyACM0",
//	    BaudRate: 115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	if err := port.WriteLine(`{"cmd": "status", "id": 1}`, "\n"); err != nil {
//	    log.Println("Write failed:", err)
//	}
//
//	buf := make([]byte, 4096)
//	n, err := port.Read(buf)
package serial
