// Package toolgate provides a gated code-execution runtime for agent
// generated code.
//
// Submitted code runs inside a sandboxed engine whose only external surface
// is a capability object; every tool call it makes is recorded, resolved
// against an access-policy graph and, when required, parked behind a human
// approval while the code blocks and retries.
//
// The pieces are pluggable service layers:
//
//   - task      – task and tool-call state machines
//   - policy    – role/rule/binding graph and decision engine
//   - approval  – human-in-the-loop decisions on parked calls
//   - gate      – the adapter joining policy, approvals and tool execution
//   - runner    – worker pool executing task code with timeout enforcement
//   - scheduler – dispatch of queued tasks onto the runner queue
//
// Toolgate is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv := toolgate.New()
//	rt := srv.Runtime()
//	rt.Start(ctx)
//	aTask, wait, _ := rt.Submit(ctx, &task.Submission{ID: "t1", RuntimeID: "script", Code: plan})
//	aTask, _ = wait(ctx, time.Minute)
//
// For more details see the README and individual sub-packages.
package toolgate
