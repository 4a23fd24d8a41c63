// Package saturation implements the context-based saturation procedure.
//
// Every expression that needs classification owns a Context holding its
// derived subsumers, incoming backward links, outgoing forward links and
// pending conclusions. Rules read only the state of the context being
// processed and produce conclusions into target contexts. Workers claim
// contexts from a shared ready queue with an atomic Queued→Processing
// transition, so each context is mutated by at most one worker at a time.
//
// A run ends when every context is saturated (quiescence) or when the run's
// context.Context is canceled. Interrupted runs leave the remaining contexts
// queued and can be resumed by calling Run again.
package saturation
