// Package syncmerge implements device-to-device synchronization: a full
// export of the local collections and an idempotent import that merges a
// foreign export into local state. Merging is conservative; scheduling state
// always resolves toward the less-mastered side so no card is skipped.
package syncmerge
