/*
Package log provides structured logging built on zerolog: a package-level
Logger configured once via Init, and WithComponent/WithAgent/WithTaskType
helpers for attaching subsystem and task-instance context to child loggers.
*/
package log
