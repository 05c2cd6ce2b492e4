/*
Package runtime holds the process-wide state a plugin library shares with
its host process: two store.KV handles (persistent and temporary), a
cancellation flag both manager run loops eventually observe, and a
sync.Once-backed init latch so a plugin's exported Init function is safe
to call more than once.
*/
package runtime
