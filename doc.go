// Package monitor implements an interactive ground-station client for the
// rocket avionics gateway.
//
// The gateway speaks newline-delimited JSON over a USB serial link. Inbound
// lines are telemetry ("tel"), link state ("link"), gateway status
// ("status"), command acknowledgements ("ack") and errors ("error"). Outbound
// lines are commands of the form {"cmd": "arm", "id": 1}.
//
// A Session owns the transport and the statistics. Run connects, starts a
// FrameReader goroutine that feeds complete lines to a Dispatcher, and then
// reads operator commands from a LineSource until the operator quits, input
// ends, the context is cancelled or the link fails:
//
//	sess := monitor.NewSession(monitor.Config{Port: "/dev/ttyACM0"}, monitor.SerialOpener, os.Stdout)
//	if err := sess.Run(ctx, monitor.NewScannerSource(os.Stdin)); err != nil {
//	    log.Fatal(err)
//	}
package monitor
