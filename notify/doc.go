// Package notify decides whether a DHCP lease acknowledgment should alert a human and
// delivers the alert.
//
// For each event the Engine reconciles the device record (name, host name, policy,
// per-day reconnect count), evaluates the record's Policy, suppresses the result inside the
// do-not-disturb window, dispatches through the configured Senders, appends one history
// entry and persists the device state. Nothing is committed to the record before the
// decision has been computed, so a failure part-way leaves the stored state untouched.
package notify
