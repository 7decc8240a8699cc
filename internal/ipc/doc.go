// Package ipc implements the single-instance message channel: a small text
// grammar for forwarding work to an already running instance and the
// per-user unix socket transport that carries it.
//
// A second invocation dials the running instance, sends its command line,
// optionally asks it to raise its window, and disconnects:
//
//	client, err := ipc.Dial(ctx, ipc.SocketPath(tmp, "codehost", user), ipc.Topic)
//	if err != nil {
//	    // no running instance: carry on as the first one
//	}
//	client.Execute(ctx, ipc.CmdLine{Args: "main.go", CWD: cwd})
//	client.Execute(ctx, ipc.Raise{})
//	client.Disconnect(ctx)
//
// The receiving side decodes each execute frame with Decode and hands the
// result to a Handler.
package ipc
