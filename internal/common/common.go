package common

// SystemActorID is the sentinel actor recorded for automatic actions
// (auto-approval sweep, system-triggered aggregation). Real user IDs
// start at 1, so zero is never a valid human actor.
const SystemActorID uint = 0
