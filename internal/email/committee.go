package email

import (
	"context"
	"fmt"
	"time"

	"github.com/Shamsear/ssleague-sub005/internal/auction"
	"github.com/Shamsear/ssleague-sub005/internal/store"
)

const committeeSendTimeout = 10 * time.Second

// CommitteeNotifier delivers finalization events to the committee mailbox.
// It satisfies auction.Notifier.
type CommitteeNotifier struct {
	sender  Sender
	address string
}

func NewCommitteeNotifier(sender Sender, committeeAddress string) (*CommitteeNotifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("committee notifier requires a sender")
	}
	if committeeAddress == "" {
		return nil, fmt.Errorf("committee address is required")
	}
	return &CommitteeNotifier{sender: sender, address: committeeAddress}, nil
}

func (n *CommitteeNotifier) TiebreakerCreated(ctx context.Context, round store.Round, tiebreakerID string, tiedBids []auction.TiedBid) error {
	msg := BuildTiebreakerNotice(round.ID, round.SeasonID, tiebreakerID, tiedBids)
	return n.send(ctx, msg)
}

func (n *CommitteeNotifier) RoundFinalized(ctx context.Context, round store.Round, allocationCount int) error {
	msg := BuildFinalizationNotice(round.ID, round.SeasonID, allocationCount)
	return n.send(ctx, msg)
}

func (n *CommitteeNotifier) send(ctx context.Context, msg CommitteeEmail) error {
	sendCtx, cancel := newSendContext(ctx, committeeSendTimeout)
	defer cancel()
	return n.sender.Send(sendCtx, n.address, msg.Subject, msg.Body)
}
