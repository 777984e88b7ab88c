package model

// Resolution is the outcome of looking up one source's channel count.
type Resolution struct {
	Source   int  // source index as written, -1 for the previous layer
	Channels int  // resolved channel count
	Fallback bool // the index was out of range and the last value was reused
}

// ChannelTable tracks output channel counts in layer order. Slot 0 holds the
// input channels and slot k+1 the output of layer k. Entries are only ever
// appended.
type ChannelTable struct {
	slots []int
}

// NewChannelTable starts a table with the input channel count.
func NewChannelTable(input int) *ChannelTable {
	return &ChannelTable{slots: []int{input}}
}

// Len returns the number of slots, including the input slot.
func (t *ChannelTable) Len() int {
	return len(t.slots)
}

// Last returns the most recently appended channel count.
func (t *ChannelTable) Last() int {
	return t.slots[len(t.slots)-1]
}

// Append records the output channels of the next layer.
func (t *ChannelTable) Append(ch int) {
	t.slots = append(t.slots, ch)
}

// Slots returns a copy of the table.
func (t *ChannelTable) Slots() []int {
	return append([]int(nil), t.slots...)
}

// Resolve looks up the output channels of source layer src. A source of -1
// is the previous layer. Any other index whose slot does not exist falls
// back to the last value and is marked as such.
func (t *ChannelTable) Resolve(src int) Resolution {
	if src == -1 {
		return Resolution{Source: src, Channels: t.Last()}
	}
	slot := src + 1
	if slot >= 0 && slot < len(t.slots) {
		return Resolution{Source: src, Channels: t.slots[slot]}
	}
	return Resolution{Source: src, Channels: t.Last(), Fallback: true}
}
