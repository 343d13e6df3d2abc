// Package router connects a route tree, a location and a mount.
//
// A Router owns one goroutine, started by Host, on which every
// reconciliation step and every component hook other than OnLoad runs.
// Navigate, Update and Refresh may be called from any goroutine,
// including from inside component hooks: they only queue work for the
// router goroutine.
//
//	tree := route.MustBuild(table)
//	r := router.New(tree, location.NewMemory("/"),
//	    router.WithLogger(logger),
//	)
//	go r.Host(ctx, vdom.NewMount())
//	r.Navigate("/a/b/1", nil)
//	r.Settle(ctx)
//
// A navigation that arrives while a previous one is still loading aborts
// it; the layers that were already committed are kept.
package router
