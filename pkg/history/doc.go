// Package history implements reversible canvas mutations and the
// undo/redo stacks that record them.
//
// # Commands
//
// A [Command] is a self-contained description of one forward mutation and
// its exact inverse. Constructors deep-clone both the forward payload and
// the inverse snapshot, so later changes to live nodes or edges cannot
// corrupt recorded history. Commands apply themselves through a [Context]
// of primitive setters implemented by the owning store; they never touch
// store internals.
//
// [CompositeCommand] groups several commands into one history entry:
// sub-commands execute in order and undo in reverse order, which is how a
// multi-node delete undoes atomically.
//
// # Manager
//
// [Manager] keeps two bounded stacks. Executing a new command clears the
// redo stack (branching history is not kept) and the oldest entry is
// silently dropped once [DefaultMaxDepth] is exceeded.
//
// # Serialization
//
// [Command.ToJSON] is reserved for future sync; [FromJSON] is not
// implemented and always fails.
package history
