package char

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"github.com/valkyrja/ro2go/internal/char/serverpackets"
	"github.com/valkyrja/ro2go/internal/config"
	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

// deletionDelay is the grace period between reserving a deletion and being
// allowed to confirm it.
const deletionDelay = 24 * time.Hour

// session is the per-connection state machine. It starts unauthenticated;
// only a ConnectClient matching a live ticket moves it forward. A failed
// ticket check drops the connection; requests arriving in the wrong state
// are refused but the connection lives on.
type session struct {
	srv    *Server
	conn   net.Conn
	remote string

	authenticated bool
	handedOff     bool
	account       model.Account

	// pincodeSeed is minted at enter time; the client mixes it into its
	// keypad layout.
	pincodeSeed uint32
}

// handle dispatches one decoded request. It reports whether the connection
// is done (refused or handed off); a non-nil error is a failed write and
// also ends the connection.
func (s *session) handle(req Request) (bool, error) {
	if !s.authenticated {
		connect, ok := req.(ConnectClient)
		if !ok {
			slog.Warn("request before ticket check", "remote", s.remote, "request", fmt.Sprintf("%T", req))
			return false, s.refuseEnter()
		}
		return s.handleConnect(connect)
	}

	switch req := req.(type) {
	case ConnectClient:
		// A second ticket on an open session is out of order.
		return false, s.refuseEnter()
	case ListCharacters:
		return false, s.sendCharacterList()
	case SelectCharacter:
		return s.handleSelect(req)
	case CreateCharacter:
		return false, s.handleCreate(req)
	case DeleteCharacter:
		return false, s.handleDelete(req)
	case RequestDeletion:
		return false, s.handleRequestDeletion(req)
	case AcceptDeletion:
		return false, s.handleAcceptDeletion(req)
	case CancelDeletion:
		return false, s.handleCancelDeletion(req)
	case RenameCharacter:
		return false, s.handleRename(req)
	case MoveSlot:
		return false, s.handleMoveSlot(req)
	case CheckPincode:
		return false, s.handleCheckPincode(req)
	case NewPincode:
		return false, s.handleNewPincode(req)
	case ChangePincode:
		return false, s.handleChangePincode(req)
	case RequestPincode:
		return false, s.sendPincodeState()
	case RequestCaptcha, CheckCaptcha:
		// No captcha backend; answer every round as failed.
		return false, s.send(func(buf []byte) (int, error) {
			return serverpackets.CaptchaResult(buf, serverpackets.CaptchaFailed)
		})
	case KeepAlive:
		// The read deadline was already pushed by the frame itself.
		return false, nil
	default:
		slog.Warn("unhandled character request", "remote", s.remote, "request", fmt.Sprintf("%T", req))
		return false, nil
	}
}

// handleConnect runs the one-shot ticket check and, on success, pushes the
// full selection-screen sequence.
func (s *session) handleConnect(req ConnectClient) (bool, error) {
	info := req.Info
	if _, ok := s.srv.tickets.Consume(info.AccountID, info.AuthenticationCode, info.UserLevel); !ok {
		slog.Info("ticket check failed", "remote", s.remote, "account", info.AccountID)
		return true, s.refuseEnter()
	}

	acc, err := s.srv.accounts.GetByID(info.AccountID)
	if err != nil {
		slog.Error("ticket for unknown account", "remote", s.remote, "account", info.AccountID, "error", err)
		return true, s.refuseEnter()
	}

	s.authenticated = true
	s.account = acc
	s.pincodeSeed = rand.Uint32()
	slog.Info("session authenticated", "remote", s.remote, "account", acc.ID)

	if err := s.send(func(buf []byte) (int, error) {
		return serverpackets.AccountConnected(buf, acc.ID)
	}); err != nil {
		return true, err
	}
	if err := s.send(func(buf []byte) (int, error) {
		return serverpackets.CharacterSlotCount(buf, acc.CharSlots)
	}); err != nil {
		return true, err
	}

	chars, names := s.characters()
	if err := s.send(func(buf []byte) (int, error) {
		return serverpackets.CharacterInfo(buf, chars, names, acc.CharSlots)
	}); err != nil {
		return true, err
	}

	pages := uint32(len(chars) / 3)
	if pages == 0 {
		pages = 1
	}
	if err := s.send(func(buf []byte) (int, error) {
		return serverpackets.CharacterPagesAvailable(buf, pages)
	}); err != nil {
		return true, err
	}
	if err := s.send(serverpackets.BannedCharacters); err != nil {
		return true, err
	}
	return false, s.sendPincodeState()
}

func (s *session) handleSelect(req SelectCharacter) (bool, error) {
	ch, err := s.srv.characters.GetBySlot(s.account.ID, req.Slot)
	if err != nil {
		slog.Info("select on empty slot", "remote", s.remote, "account", s.account.ID, "slot", req.Slot)
		return false, s.refuseEnter()
	}

	endpoint, err := s.srv.zone.CharacterSelected(s.account.ID, ch.ID)
	if err != nil {
		slog.Error("zone handoff failed", "account", s.account.ID, "character", ch.ID, "error", err)
		return false, s.refuseEnter()
	}

	s.handedOff = true
	slog.Info("character selected", "account", s.account.ID, "character", ch.ID, "name", ch.Name)
	return true, s.send(func(buf []byte) (int, error) {
		return serverpackets.NotifyZoneServer(buf, ch.ID, s.mapName(&ch), endpoint.IP, endpoint.Port)
	})
}

func (s *session) handleCreate(req CreateCharacter) error {
	nc := req.Character
	if reason, ok := s.validateCreate(nc); !ok {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RefuseMakeChar(buf, reason)
		})
	}

	ch, err := s.srv.characters.Create(s.account.ID)
	if err != nil {
		slog.Error("character creation failed", "account", s.account.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RefuseMakeChar(buf, serverpackets.MakeCharDenied)
		})
	}

	ch.Name = nc.Name
	ch.Slot = nc.Slot
	ch.Class = nc.Class
	ch.Appearance.Hair = nc.Hair
	ch.Appearance.HairColor = nc.HairColor
	ch.Sex = s.account.Sex
	if nc.HasSex {
		ch.Sex = nc.Sex
	}

	fixture := s.fixture(nc.Class)
	mapID, _ := s.srv.maps.ID(fixture.Map)
	ch.Location.Current = model.Point{MapID: mapID, X: fixture.X, Y: fixture.Y}

	if err := s.srv.characters.Update(ch); err != nil {
		slog.Error("character persist failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RefuseMakeChar(buf, serverpackets.MakeCharDenied)
		})
	}

	items := make([]model.Item, 0, len(fixture.Items))
	for _, it := range fixture.Items {
		items = append(items, model.NewItem(it.ID, it.Slot, it.Amount))
	}
	if err := s.srv.inventories.Create(ch.ID, items); err != nil {
		slog.Error("inventory seed failed", "character", ch.ID, "error", err)
	}

	slog.Info("character created", "account", s.account.ID, "character", ch.ID, "name", ch.Name, "slot", ch.Slot)
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.AcceptMakeChar(buf, &ch, fixture.Map)
	})
}

// validateCreate gates a creation request: a free slot inside the account's
// allowance, a usable name, and a class pickable at creation.
func (s *session) validateCreate(nc NewCharacter) (uint8, bool) {
	if nc.Slot >= s.account.CharSlots || nc.Slot >= model.MaxCharactersPerAccount {
		return serverpackets.MakeCharInvalidSlot, false
	}
	if s.srv.characters.CountByAccount(s.account.ID) >= model.MaxCharactersPerAccount {
		return serverpackets.MakeCharDenied, false
	}
	if _, err := s.srv.characters.GetBySlot(s.account.ID, nc.Slot); err == nil {
		return serverpackets.MakeCharDenied, false
	}
	if nc.Name == "" {
		return serverpackets.MakeCharDenied, false
	}
	for _, ch := range s.srv.characters.GetByAccountID(s.account.ID) {
		if ch.Name == nc.Name {
			return serverpackets.MakeCharNameTaken, false
		}
	}
	if !model.ValidStartingClass(nc.Class) {
		return serverpackets.MakeCharDenied, false
	}
	return 0, true
}

func (s *session) handleDelete(req DeleteCharacter) error {
	ch, err := s.srv.characters.GetByID(req.CharacterID)
	if err != nil || ch.AccountID != s.account.ID || req.Email != s.account.Email {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RefuseDelete(buf, serverpackets.DeleteDeniedWrongEmail)
		})
	}

	if err := s.srv.characters.Delete(ch.ID); err != nil {
		slog.Error("character delete failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RefuseDelete(buf, serverpackets.DeleteDeniedWrongEmail)
		})
	}
	s.srv.inventories.Delete(ch.ID)

	slog.Info("character deleted", "account", s.account.ID, "character", ch.ID, "name", ch.Name)
	return s.send(serverpackets.AcceptDelete)
}

func (s *session) handleRequestDeletion(req RequestDeletion) error {
	ch, err := s.srv.characters.GetByID(req.CharacterID)
	if err != nil || ch.AccountID != s.account.ID {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionReserved(buf, req.CharacterID, serverpackets.DeletionReserveRefused, 0)
		})
	}

	ch.DeleteDate = s.srv.now().Add(deletionDelay)
	if err := s.srv.characters.Update(ch); err != nil {
		slog.Error("deletion reservation failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionReserved(buf, req.CharacterID, serverpackets.DeletionReserveRefused, 0)
		})
	}

	return s.send(func(buf []byte) (int, error) {
		return serverpackets.DeletionReserved(buf, ch.ID, serverpackets.DeletionReserveOK, uint32(ch.DeleteDate.Unix()))
	})
}

func (s *session) handleAcceptDeletion(req AcceptDeletion) error {
	ch, err := s.srv.characters.GetByID(req.CharacterID)
	if err != nil || ch.AccountID != s.account.ID ||
		ch.DeleteDate.IsZero() || s.srv.now().Before(ch.DeleteDate) ||
		req.BirthDate != s.account.BirthDate {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionAccepted(buf, req.CharacterID, serverpackets.DeletionResultWrongInfo)
		})
	}

	if err := s.srv.characters.Delete(ch.ID); err != nil {
		slog.Error("character delete failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionAccepted(buf, req.CharacterID, serverpackets.DeletionResultWrongInfo)
		})
	}
	s.srv.inventories.Delete(ch.ID)

	slog.Info("reserved deletion completed", "account", s.account.ID, "character", ch.ID)
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.DeletionAccepted(buf, ch.ID, serverpackets.DeletionResultOK)
	})
}

func (s *session) handleCancelDeletion(req CancelDeletion) error {
	ch, err := s.srv.characters.GetByID(req.CharacterID)
	if err != nil || ch.AccountID != s.account.ID || ch.DeleteDate.IsZero() {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionCancelled(buf, req.CharacterID, serverpackets.DeletionCancelRefused)
		})
	}

	ch.DeleteDate = time.Time{}
	if err := s.srv.characters.Update(ch); err != nil {
		slog.Error("deletion cancel failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.DeletionCancelled(buf, req.CharacterID, serverpackets.DeletionCancelRefused)
		})
	}
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.DeletionCancelled(buf, ch.ID, serverpackets.DeletionCancelOK)
	})
}

func (s *session) handleRename(req RenameCharacter) error {
	ch, err := s.srv.characters.GetByID(req.CharacterID)
	if err != nil || ch.AccountID != s.account.ID || req.AccountID != s.account.ID ||
		req.NewName == "" || !ch.RenameAvailable() {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RenameResult(buf, serverpackets.RenameDenied)
		})
	}

	ch.Name = req.NewName
	ch.Settings.Rename++
	if err := s.srv.characters.Update(ch); err != nil {
		slog.Error("rename persist failed", "character", ch.ID, "error", err)
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.RenameResult(buf, serverpackets.RenameDenied)
		})
	}

	slog.Info("character renamed", "account", s.account.ID, "character", ch.ID, "name", ch.Name)
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.RenameResult(buf, serverpackets.RenameOK)
	})
}

func (s *session) handleMoveSlot(req MoveSlot) error {
	if req.From >= model.MaxCharactersPerAccount || req.To >= model.MaxCharactersPerAccount {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.MoveSlotResult(buf, serverpackets.MoveSlotDenied, 0)
		})
	}
	if err := s.srv.characters.MoveSlot(s.account.ID, uint8(req.From), uint8(req.To)); err != nil {
		return s.send(func(buf []byte) (int, error) {
			return serverpackets.MoveSlotResult(buf, serverpackets.MoveSlotDenied, 0)
		})
	}

	if err := s.send(func(buf []byte) (int, error) {
		return serverpackets.MoveSlotResult(buf, serverpackets.MoveSlotOK, 1)
	}); err != nil {
		return err
	}
	// The client redraws the selection screen from a fresh list.
	return s.sendCharacterList()
}

func (s *session) handleCheckPincode(req CheckPincode) error {
	state := model.PincodeIncorrect
	if req.AccountID == s.account.ID && req.Pin == s.account.Pincode {
		state = model.PincodeCorrect
	}
	return s.sendPincodeInfo(state)
}

func (s *session) handleNewPincode(req NewPincode) error {
	if req.AccountID != s.account.ID || s.account.HasPincode() {
		return s.sendPincodeInfo(model.PincodeIncorrect)
	}
	return s.savePincode(req.Pin)
}

func (s *session) handleChangePincode(req ChangePincode) error {
	if req.AccountID != s.account.ID || req.Old != s.account.Pincode {
		return s.sendPincodeInfo(model.PincodeIncorrect)
	}
	return s.savePincode(req.New)
}

func (s *session) savePincode(pin [4]byte) error {
	s.account.Pincode = pin
	s.account.PincodeChange = s.srv.now()
	if err := s.srv.accounts.Save(s.account); err != nil {
		slog.Error("pincode persist failed", "account", s.account.ID, "error", err)
		return s.sendPincodeInfo(model.PincodeIncorrect)
	}
	return s.sendPincodeInfo(model.PincodeCorrect)
}

// sendPincodeState answers with the dialog the client should open: nothing
// when pincodes are disabled, the keypad when one is set, the creation
// dialog otherwise.
func (s *session) sendPincodeState() error {
	state := model.PincodeCorrect
	if s.srv.cfg.PincodeEnabled {
		if s.account.HasPincode() {
			state = model.PincodeAskForPin
		} else {
			state = model.PincodeCreateNewPin
		}
	}
	return s.sendPincodeInfo(state)
}

func (s *session) sendPincodeInfo(state model.PincodeState) error {
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.PincodeInfo(buf, s.pincodeSeed, s.account.ID, state)
	})
}

func (s *session) sendCharacterList() error {
	chars, names := s.characters()
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.Characters(buf, chars, names)
	})
}

// characters loads the account's characters plus their resolved map names,
// index-aligned for the frame writers.
func (s *session) characters() ([]model.Character, []string) {
	chars := s.srv.characters.GetByAccountID(s.account.ID)
	names := make([]string, len(chars))
	for i := range chars {
		names[i] = s.mapName(&chars[i])
	}
	return chars, names
}

// mapName resolves the character's current map, falling back to its class's
// starting map when the id is unknown.
func (s *session) mapName(ch *model.Character) string {
	if name, ok := s.srv.maps.Name(ch.Location.Current.MapID); ok {
		return name
	}
	return s.fixture(ch.Class).Map
}

func (s *session) fixture(class model.Class) config.StartingCharacter {
	if class == model.ClassSummoner {
		return s.srv.cfg.Doram
	}
	return s.srv.cfg.Novice
}

func (s *session) refuseEnter() error {
	return s.send(func(buf []byte) (int, error) {
		return serverpackets.RefuseEnter(buf, serverpackets.RefuseEnterRejected)
	})
}

func (s *session) send(write func([]byte) (int, error)) error {
	buf := s.srv.sendPool.Get(protocol.DefaultSendBufSize)
	n, err := write(buf)

	// A full character list outgrows the default buffer; the overflow
	// carries the size the encoder needs, so retry at that size.
	var overflow *protocol.OverflowError
	if errors.As(err, &overflow) {
		s.srv.sendPool.Put(buf)
		buf = s.srv.sendPool.Get(overflow.Needed)
		n, err = write(buf)
	}
	defer s.srv.sendPool.Put(buf)

	if err != nil {
		return err
	}
	_, err = s.conn.Write(buf[:n])
	return err
}
