// Package waitqueue implements the Wait Registry of spec §4.B: the
// list of suspended read contexts an input buffer owns, and the
// notify/resume protocol that revives them.
//
// Per spec §9 ("Callback-based wait resumption"), a suspended read is
// represented as a tagged sum of {Raw, Cooked} contexts in the source.
// Here that sum is simply the Resumer interface: internal/dispatch
// supplies one concrete implementation per read kind, and this
// package never needs to know which.
package waitqueue

// Reason conveys why a resumer is being invoked.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCtrlC
	ReasonCtrlBreak
	ReasonHandleClosing
)

// Resumer is a suspended read context capable of retrying itself.
// Resume returns true if the read was consumed (completed or
// terminated) and should be removed from the registry, or false if it
// should remain registered (still no data, try again later).
type Resumer interface {
	Resume(reason Reason, threadDying bool) (consumed bool)
}

// Block is a suspended read context held by the registry until
// revived. OwnerThread identifies the thread/process that issued the
// read, used by NotifyThreadDying.
type Block struct {
	Resumer     Resumer
	OwnerThread uint64
}

// Registry holds the Wait Blocks for a single input buffer. It has no
// lock of its own — like inputevent.Buffer, it is mutated only while
// the owning console's single global lock is held.
type Registry struct {
	blocks []*Block
}

// NewRegistry returns an empty Wait Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register takes ownership of resumer and appends (or, if prepend,
// prepends) it to the queue. Returns the Block so a caller may hold on
// to it (e.g. to cancel by identity later).
func (r *Registry) Register(resumer Resumer, ownerThread uint64, prepend bool) *Block {
	blk := &Block{Resumer: resumer, OwnerThread: ownerThread}
	if prepend {
		r.blocks = append([]*Block{blk}, r.blocks...)
	} else {
		r.blocks = append(r.blocks, blk)
	}
	return blk
}

// Len reports the number of pending wait blocks.
func (r *Registry) Len() int { return len(r.blocks) }

// Notify iterates the queue in order, invoking each resumer's Resume
// with the given reason. A block whose Resume returns true is
// removed; one that returns false stays registered. If all is false,
// notify stops after the first consumption (spec §4.B: "single-wake
// per append batch is acceptable so long as a subsequent append also
// wakes").
func (r *Registry) Notify(reason Reason, all bool) {
	remaining := r.blocks[:0]
	consumedOne := false
	for _, blk := range r.blocks {
		if !all && consumedOne {
			remaining = append(remaining, blk)
			continue
		}
		if blk.Resumer.Resume(reason, false) {
			consumedOne = true
			continue
		}
		remaining = append(remaining, blk)
	}
	r.blocks = remaining
}

// NotifyThreadDying invokes every block owned by threadID with
// threadDying=true and always removes them, regardless of what Resume
// returns (spec §4.B: "always remove").
func (r *Registry) NotifyThreadDying(threadID uint64) {
	remaining := r.blocks[:0]
	for _, blk := range r.blocks {
		if blk.OwnerThread == threadID {
			blk.Resumer.Resume(ReasonNone, true)
			continue
		}
		remaining = append(remaining, blk)
	}
	r.blocks = remaining
}

// Remove drops blk from the queue without invoking its resumer, used
// when a read is cancelled by its own caller (e.g. handle close
// racing a pending wait it already owns). It is a no-op if blk is not
// present.
func (r *Registry) Remove(blk *Block) {
	for i, b := range r.blocks {
		if b == blk {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			return
		}
	}
}
