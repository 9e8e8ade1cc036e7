// Package platform implements the editor's host-integration layer: the
// single-threaded event loop that drives a tick (multiplexer wait,
// translate readiness, feed the application, drain outgoing requests),
// the listener/connection half for client sockets, and the process
// supervisor used to spawn and track LSP servers and other child
// processes.
//
// # Process supervision
//
// The Supervisor manages multiple child processes:
//
//	supervisor := platform.NewSupervisor()
//	defer supervisor.Shutdown(5 * time.Second)
//
//	cmd := exec.Command("gopls")
//	proc, err := supervisor.Start("gopls", cmd)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	<-proc.Done()
//	fmt.Printf("exit code: %d\n", proc.ExitCode())
//
// Each Process wraps an exec.Cmd with a unique ID, start time, exit
// code, and a Done channel, and is safe for concurrent use.
package platform
