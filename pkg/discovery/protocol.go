package discovery

import (
	"bytes"
	"strings"
	"time"
)

// Wire constants shared by every instance on the network.
const (
	DefaultPort     = 54545
	DefaultInterval = 1 * time.Second
	Magic           = "PYGAME_PEER_DISCOVERY"
	Separator       = ":"
	// MaxPayloadSize is the receive buffer size. Anything longer is cut by the transport.
	MaxPayloadSize = 1024
)

var announcementPrefix = []byte(Magic + Separator)

// EncodeAnnouncement builds the datagram an instance broadcasts to advertise id.
func EncodeAnnouncement(id string) []byte {
	payload := make([]byte, 0, len(announcementPrefix)+len(id))
	payload = append(payload, announcementPrefix...)
	return append(payload, id...)
}

// ParseAnnouncement extracts the peer ID from an announcement.
// ok is false for anything that does not carry the protocol prefix.
// The peer ID is everything after the first separator and may itself contain ':'.
func ParseAnnouncement(payload []byte) (peerID string, ok bool) {
	if !bytes.HasPrefix(payload, announcementPrefix) {
		return "", false
	}
	return strings.ToValidUTF8(string(payload[len(announcementPrefix):]), ""), true
}
