package netsim

import "testing"

func TestPacketPredicates(t *testing.T) {
	type testcase struct {
		name   string
		packet *Packet
		data   bool
		ack    bool
		tcp    bool
		rt     bool
	}

	cases := []testcase{{
		name:   "data packet",
		packet: NewDataPacket("A", "B", DataPacketSize, 0, "f0", 0),
		data:   true,
		tcp:    true,
	}, {
		name:   "ack packet",
		packet: NewAckPacket("B", "A", 1, "f0", 0, 0),
		ack:    true,
		tcp:    true,
	}, {
		name:   "routing update",
		packet: NewRoutingUpdatePacket("R1", "H1", 0.02),
		rt:     true,
	}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.packet.IsTCPData(); got != tc.data {
				t.Errorf("IsTCPData() = %v, want %v", got, tc.data)
			}
			if got := tc.packet.IsTCPAck(); got != tc.ack {
				t.Errorf("IsTCPAck() = %v, want %v", got, tc.ack)
			}
			if got := tc.packet.IsTCP(); got != tc.tcp {
				t.Errorf("IsTCP() = %v, want %v", got, tc.tcp)
			}
			if got := tc.packet.IsRoutingUpdate(); got != tc.rt {
				t.Errorf("IsRoutingUpdate() = %v, want %v", got, tc.rt)
			}
		})
	}
}

func TestNewAckPacketCarriesDataTime(t *testing.T) {
	ack := NewAckPacket("B", "A", 3, "f0", 1.25, 2.5)
	if ack.DataTime != 1.25 {
		t.Errorf("DataTime = %v, want 1.25", ack.DataTime)
	}
	if ack.AckTime != 2.5 {
		t.Errorf("AckTime = %v, want 2.5", ack.AckTime)
	}
	if ack.Size != AckPacketSize {
		t.Errorf("Size = %v, want %v", ack.Size, AckPacketSize)
	}
}
