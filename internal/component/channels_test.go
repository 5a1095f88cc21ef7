package component

import "testing"

func TestPeerPair_BidirectionalAndSymmetric(t *testing.T) {
	pair := newPeerPair()

	aSide := pair.sideFor("a", "b")
	bSide := pair.sideFor("b", "a")

	aSide.Send <- "from-a"
	got := <-bSide.Recv
	if got != "from-a" {
		t.Fatalf("b did not receive a's message: got %v", got)
	}

	bSide.Send <- "from-b"
	got = <-aSide.Recv
	if got != "from-b" {
		t.Fatalf("a did not receive b's message: got %v", got)
	}
}

func TestNotify_FanInPreservesPerSenderOrder(t *testing.T) {
	recv := make(chan NotifyMsg, 16)

	for i := 0; i < 3; i++ {
		recv <- NotifyMsg{From: "ui", Payload: i}
	}
	close(recv)

	var got []int
	for msg := range recv {
		got = append(got, msg.Payload.(int))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("notify messages from a single sender reordered: %v", got)
		}
	}
}
