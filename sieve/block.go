package sieve

// Block models the RFC 5228 block: a braced, ordered sequence of
// commands.
type Block struct {
	Node

	commands []*Command
}

// NewBlock returns an empty block production.
func NewBlock() *Block {
	b := &Block{}
	b.init("block")
	return b
}

// Append adds c to the block. A nil c is ignored.
func (b *Block) Append(c *Command) {
	if c == nil {
		return
	}
	b.commands = append(b.commands, c)
	c.SetParent(&b.Node)
}

// Commands returns the block's commands in source order. The returned
// slice may be empty.
func (b *Block) Commands() []*Command {
	return b.commands
}
