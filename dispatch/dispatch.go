// Package dispatch routes decoded WAP pushes to a push manager, a default
// consumer, or every consumer holding the matching permission.
package dispatch

import (
	"errors"
	"strconv"
	"time"

	"github.com/psanford/wappush/wap"
	log "github.com/sirupsen/logrus"
)

const DefaultAllowlistDuration = 60 * time.Second

type Config struct {
	// FallbackHeaderIndex is the secondary offset of the WSP header. Zero or
	// negative disables the fallback.
	FallbackHeaderIndex int
	AllowlistDuration   time.Duration
}

// Deps are the collaborators of a Dispatcher. Everything but Sink may be nil.
type Deps struct {
	Managers      ManagerLocator
	BlockList     BlockList
	Notifications NotificationParser
	Consumers     ConsumerResolver
	Sink          Sink
}

type Dispatcher struct {
	cfg  Config
	deps Deps
}

func New(cfg Config, deps Deps) *Dispatcher {
	if cfg.AllowlistDuration <= 0 {
		cfg.AllowlistDuration = DefaultAllowlistDuration
	}
	return &Dispatcher{cfg: cfg, deps: deps}
}

// HandlePDU decodes in.PDU and dispatches the result.
func (d *Dispatcher) HandlePDU(in Inbound) Status {
	var opts []wap.Option
	if d.cfg.FallbackHeaderIndex > 0 {
		opts = append(opts, wap.WithFallbackHeaderIndex(d.cfg.FallbackHeaderIndex))
	}

	push, err := wap.Decode(in.PDU, opts...)
	if errors.Is(err, wap.ErrNotAPush) {
		log.WithFields(log.Fields{
			"message_id": in.MessageID,
			"len":        len(in.PDU),
		}).Debug("dropping non-push pdu")
		return StatusHandled
	} else if err != nil {
		fields := log.Fields{
			"message_id": in.MessageID,
			"len":        len(in.PDU),
		}
		var merr *wap.MalformedError
		if errors.As(err, &merr) {
			fields["field"] = merr.Field
			fields["offset"] = merr.Offset
		}
		log.WithFields(fields).WithError(err).Warn("decode wap push failed")
		return StatusGenericError
	}

	return d.Dispatch(push, in).Status()
}

// Dispatch runs a decoded push through the block check, the application id
// hand off and the fallback broadcast. It never fails: every path ends in
// one of the Outcome values.
func (d *Dispatcher) Dispatch(push *wap.Push, in Inbound) Outcome {
	logger := log.WithFields(log.Fields{
		"message_id": in.MessageID,
		"tid":        push.TransactionID,
		"mime_type":  push.MimeType,
		"app_id":     push.ApplicationID,
		"sub_id":     in.Subscription.SubID,
	})

	if push.IsMMS() && d.senderBlocked(push, logger) {
		logger.Info("dropping mms notification from blocked sender")
		return Handled
	}

	env := Envelope{
		TransactionID:         push.TransactionID,
		PDUType:               push.PDUType,
		MimeType:              push.MimeType,
		Header:                push.Header,
		Data:                  push.Body,
		ContentTypeParameters: push.ContentTypeParameters,
		Address:               in.OriginatingAddress,
		MessageID:             in.MessageID,
		Subscription:          in.Subscription,
	}

	if push.HasApplicationID() && d.handOff(push, env, logger) {
		return DeliveredToManager
	}

	if push.MimeType == "" {
		logger.WithField("code", push.BinaryContentType).Warn("no mime type for broadcast")
		return GenericError
	}

	delivery := Delivery{
		Envelope:   env,
		Permission: PermissionReceiveWAPPush,
		AppOp:      AppOpReceiveWAPPush,
	}
	if push.IsMMS() {
		delivery.Permission = PermissionReceiveMMS
		delivery.AppOp = AppOpReceiveMMS
	}

	if d.deps.Consumers != nil {
		if c, ok := d.deps.Consumers.DefaultConsumer(push.MimeType); ok {
			delivery.Target = &c
			delivery.Options.TemporaryAllowlist = d.cfg.AllowlistDuration
			d.deps.Sink.Deliver(delivery)
			logger.WithField("consumer", c.Name).Debug("delivered to default consumer")
			return DeliveredToDefaultConsumer
		}
	}

	d.deps.Sink.Deliver(delivery)
	logger.WithField("permission", delivery.Permission).Debug("delivered to all consumers")
	return DeliveredToAllConsumers
}

// senderBlocked parses the MMS notification in the push body and checks its
// sender against the block list. Parse failures are not fatal; a consumer
// may still make sense of the body.
func (d *Dispatcher) senderBlocked(push *wap.Push, logger *log.Entry) bool {
	if d.deps.Notifications == nil || d.deps.BlockList == nil {
		return false
	}
	n, err := d.deps.Notifications.ParseNotification(push.Body)
	if err != nil {
		logger.WithError(err).Debug("parse mms notification failed")
		return false
	}
	sender := n.Sender()
	if sender == "" {
		return false
	}
	return d.deps.BlockList.IsBlocked(sender)
}

// handOff offers the push to the bound push manager. It reports whether the
// manager claimed exclusive handling.
func (d *Dispatcher) handOff(push *wap.Push, env Envelope, logger *log.Entry) bool {
	if d.deps.Managers == nil {
		return false
	}
	m, ok := d.deps.Managers.BoundManager()
	if !ok {
		return false
	}

	// Managers match numeric-only content types by their decimal code.
	contentType := push.MimeType
	if contentType == "" {
		contentType = strconv.FormatInt(push.BinaryContentType, 10)
	}

	flags, err := m.ProcessMessage(push.ApplicationID, contentType, env)
	if err != nil {
		logger.WithError(err).Warn("push manager call failed")
		return false
	}
	logger.WithField("flags", flags).Debug("push manager result")

	return flags&MessageHandled != 0 && flags&FurtherProcessing == 0
}
