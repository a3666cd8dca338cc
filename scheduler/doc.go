// Package scheduler runs periodic tasks on a shared, bounded worker pool.
//
// A Scheduler owns a fixed number of execution slots (PoolSize). Each task
// gets its own timing loop, but a firing only runs once it holds a slot, so no
// more than PoolSize firings execute at the same time across all tasks.
// Firings of a single task never overlap.
//
// Two timing policies are supported:
//
//   - Fixed rate: firings are anchored to start+initialDelay+k*period. A firing
//     that overruns its period is followed immediately by the next one.
//   - Fixed delay: the next firing is scheduled period after the previous one
//     completes.
//
// # Lifecycle
//
//	s := scheduler.New(scheduler.Config{PoolSize: 4})
//	task, err := s.ScheduleWithFixedDelay(func(ctx context.Context) {
//	    refresh(ctx)
//	}, 0, 10*time.Second)
//
//	task.Cancel()       // stop one task
//	s.Shutdown(ctx)     // stop everything, bounded by ShutdownGrace
//
// Shutdown stops new firings, waits up to the grace period for in-flight ones
// and then cancels their contexts. Tasks scheduled after Shutdown are inert:
// the call succeeds but the task never fires.
package scheduler
