/*
Package plugin hosts agent bundles compiled as Go shared libraries
(buildmode=plugin). Host scans a directory for *.so files, opens each with
the standard library's plugin package, resolves its Init/Start/Stop/
Shutdown ABI, and watches the directory with fsnotify to hot-reload a
library on write and tear it down on removal. Go's plugin package cannot
unload code once mapped, so a reload is Shutdown-then-fresh-Open rather
than a true in-place replace.
*/
package plugin
