package component

// peerChanBuf is the buffer depth for peer-to-peer channels. Peers exchange
// editable state (spec §5), so unlike broadcasts these are not lossy;
// a small buffer just avoids lockstep send/receive between the two sides.
const peerChanBuf = 8

// NotifyMsg is a single entry delivered on a component's notification
// stream. Payload carries the command (e.g. "import this pack", "delete
// these packs"); From records the sending component so a multi-producer
// receiver can distinguish sources when needed.
type NotifyMsg struct {
	From    string
	Payload any
}

// PeerLink is the bidirectional point-to-point pair handed to one side of a
// peer relationship.
type PeerLink struct {
	Send chan<- any
	Recv <-chan any
}

// Channels is the bundle a component receives on Bind.
type Channels struct {
	// Requirements maps a required component's name to a broadcast
	// receiver for its output.
	Requirements map[string]*Receiver[any]
	// Peers maps a peer's name to the bidirectional link with it.
	Peers map[string]PeerLink
	// Incoming is this component's single notification receiver, present
	// only if its descriptor set AcceptNotifications.
	Incoming <-chan NotifyMsg
	// Notify maps a notify target's name to the sender half used to reach
	// it.
	Notify map[string]chan<- NotifyMsg
}

// pairKey identifies an unordered pair of component names.
type pairKey struct{ a, b string }

func pairKeyFor(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// peerPair is the shared state backing one peer relationship: two
// independent channels, one per direction.
type peerPair struct {
	aToB chan any
	bToA chan any
	a, b string // set on first sideFor call, used to route the right channel
}

func newPeerPair() *peerPair {
	return &peerPair{
		aToB: make(chan any, peerChanBuf),
		bToA: make(chan any, peerChanBuf),
	}
}

// sideFor returns the PeerLink for component `self` talking to `other`. The
// first caller fixes which channel is "a to b"; the second caller (the
// other side of the same pair) gets the link reversed automatically.
func (p *peerPair) sideFor(self, other string) PeerLink {
	if p.a == "" && p.b == "" {
		p.a, p.b = self, other
	}
	if self == p.a {
		return PeerLink{Send: p.aToB, Recv: p.bToA}
	}
	return PeerLink{Send: p.bToA, Recv: p.aToB}
}
