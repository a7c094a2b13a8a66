// Package approval implements the human-in-the-loop decision gate. A tool
// call that policy marks as requiring review is parked behind a pending
// Approval record until a reviewer resolves it.
package approval
