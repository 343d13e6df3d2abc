// Package reconcile diffs two chains of route layers and brings the mounted
// node tree from the first to the second.
//
// A chain (a stack) holds one Layer per matched route segment, root first.
// For every depth a pure step function, Decide, picks one of three actions:
//
//   - Reuse keeps the live instance: same class, same substituted path.
//   - Update keeps the instance but hands it new parameters.
//   - Rebuild unloads the old instance and loads a new one.
//
// Once a depth rebuilds or updates, the walk is detached and every deeper
// depth rebuilds. A Render is one such walk. It suspends while a layer's
// OnLoad runs and can be aborted by a newer navigation, in which case the
// layers it already committed become the baseline for the next walk.
package reconcile
