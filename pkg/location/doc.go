// Package location provides the path accessors a router reads and writes.
//
// Memory keeps an in-process history, Hash stores the path in the fragment
// of a URL and Bolt keeps a history that survives restarts. Each of them
// implements router.Location, router.Notifier and router.Replacer.
package location
