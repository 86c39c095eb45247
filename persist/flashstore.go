package persist

import (
	"encoding/binary"
	"errors"
	"sort"

	"tachometer/core"
	"tachometer/protocol"
)

// BlockDevice is the subset of TinyGo's machine.BlockDevice used by the
// flash store. machine.Flash satisfies it on the target.
type BlockDevice interface {
	ReadAt(p []byte, off int64) (n int, err error)
	WriteAt(p []byte, off int64) (n int, err error)
	Size() int64
	WriteBlockSize() int64
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

// Flash store record layout
const (
	slotMagic      = 0xA5
	slotHeaderSize = 6 // magic, seq (4), payload length
	slotCRCSize    = 2
	minSlotSize    = 64
	erasedByte     = 0xFF

	// DefaultRegionBlocks is the number of erase blocks the store rotates
	// over. With one commit per second and 256-byte slots in 4 KiB blocks,
	// each block is erased about 3.5 times per powered hour.
	DefaultRegionBlocks = 64

	minRegionBlocks = 2
)

var (
	ErrDeviceTooSmall = errors.New("flash region too small")
	ErrRecordTooLarge = errors.New("record does not fit in a slot")
)

// FlashStore is a core.KVStore kept in a ring of fixed-size slots on a
// flash block device. Every Commit appends a full snapshot to the next
// slot; a block is erased only when the ring reaches it, so committing
// once per second does not erase once per second. On open the valid
// slot with the highest sequence number wins, so a torn write falls back
// to the previous snapshot.
type FlashStore struct {
	dev           BlockDevice
	slotSize      int64
	slotsPerBlock int64
	totalSlots    int64

	values map[string]int32
	dirty  bool
	seq    uint32
	next   int64 // next slot index to write
}

// OpenFlashStore scans the first regionBlocks erase blocks of dev and loads
// the newest valid snapshot. A device holding fewer blocks is used whole;
// fewer than two blocks is ErrDeviceTooSmall. Failures are ErrInitFailure.
func OpenFlashStore(dev BlockDevice, regionBlocks int64) (*FlashStore, error) {
	if regionBlocks <= 0 {
		regionBlocks = DefaultRegionBlocks
	}

	eraseSize := dev.EraseBlockSize()
	slotSize := dev.WriteBlockSize()
	if slotSize < minSlotSize {
		slotSize = minSlotSize
	}
	if eraseSize <= 0 || eraseSize < slotSize {
		return nil, &Error{Kind: ErrInitFailure, Op: "open", Err: ErrDeviceTooSmall}
	}
	if available := dev.Size() / eraseSize; available < regionBlocks {
		core.ErrorPrintln("[persist] flash holds " + core.Itoa(int(available)) + " of " + core.Itoa(int(regionBlocks)) + " blocks")
		regionBlocks = available
	}
	if regionBlocks < minRegionBlocks {
		return nil, &Error{Kind: ErrInitFailure, Op: "open", Err: ErrDeviceTooSmall}
	}

	s := &FlashStore{
		dev:           dev,
		slotSize:      slotSize,
		slotsPerBlock: eraseSize / slotSize,
		values:        make(map[string]int32),
	}
	s.totalSlots = s.slotsPerBlock * regionBlocks

	if err := s.scan(); err != nil {
		return nil, &Error{Kind: ErrInitFailure, Op: "open", Err: err}
	}
	return s, nil
}

func (s *FlashStore) scan() error {
	buf := make([]byte, s.slotSize)
	found := false
	var bestSlot int64

	for slot := int64(0); slot < s.totalSlots; slot++ {
		if _, err := s.dev.ReadAt(buf, slot*s.slotSize); err != nil {
			return err
		}
		seq, payload, ok := parseSlot(buf)
		if !ok {
			continue
		}
		if !found || seq > s.seq {
			values, err := decodeValues(payload)
			if err != nil {
				continue
			}
			found = true
			s.seq = seq
			s.values = values
			bestSlot = slot
		}
	}

	if found {
		s.next = (bestSlot + 1) % s.totalSlots
		core.DebugPrintln("[persist] flash snapshot seq=" + core.Utoa(uint64(s.seq)) + " slot=" + core.Itoa(int(bestSlot)))
	}
	return nil
}

// GetI32 returns the current value of a key
func (s *FlashStore) GetI32(namespace, key string) (int32, error) {
	v, ok := s.values[memKey(namespace, key)]
	if !ok {
		return 0, core.ErrNotFound
	}
	return v, nil
}

// SetI32 stages a value; it is written at the next Commit
func (s *FlashStore) SetI32(namespace, key string, value int32) error {
	k := memKey(namespace, key)
	if old, ok := s.values[k]; ok && old == value {
		return nil
	}
	s.values[k] = value
	s.dirty = true
	return nil
}

// Commit writes a snapshot of all values if anything changed
func (s *FlashStore) Commit() error {
	if !s.dirty {
		return nil
	}

	record, err := s.encodeSlot(s.seq + 1)
	if err != nil {
		return err
	}

	slot, err := s.prepareSlot(s.next)
	if err != nil {
		return err
	}
	if _, err := s.dev.WriteAt(record, slot*s.slotSize); err != nil {
		return err
	}

	s.seq++
	s.next = (slot + 1) % s.totalSlots
	s.dirty = false
	return nil
}

// prepareSlot returns a writable slot at or after slot, erasing a block
// when the ring enters it or when a slot was left partly programmed.
func (s *FlashStore) prepareSlot(slot int64) (int64, error) {
	if slot%s.slotsPerBlock != 0 {
		erased, err := s.slotErased(slot)
		if err != nil {
			return 0, err
		}
		if erased {
			return slot, nil
		}
		// Skip the damaged tail of this block
		slot = ((slot/s.slotsPerBlock + 1) * s.slotsPerBlock) % s.totalSlots
	}

	if err := s.dev.EraseBlocks(slot/s.slotsPerBlock, 1); err != nil {
		return 0, err
	}
	return slot, nil
}

func (s *FlashStore) slotErased(slot int64) (bool, error) {
	buf := make([]byte, s.slotSize)
	if _, err := s.dev.ReadAt(buf, slot*s.slotSize); err != nil {
		return false, err
	}
	for _, b := range buf {
		if b != erasedByte {
			return false, nil
		}
	}
	return true, nil
}

func (s *FlashStore) encodeSlot(seq uint32) ([]byte, error) {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(payload, uint32(len(keys)))
	for _, k := range keys {
		protocol.EncodeVLQString(payload, k)
		protocol.EncodeVLQInt(payload, s.values[k])
	}
	// ScratchOutput silently truncates, so a full buffer means overflow
	data := payload.Result()
	if len(data) >= protocol.MessageMax || int64(len(data)) > s.slotSize-slotHeaderSize-slotCRCSize || len(data) > 0xFF {
		return nil, ErrRecordTooLarge
	}

	record := make([]byte, s.slotSize)
	for i := range record {
		record[i] = erasedByte
	}
	record[0] = slotMagic
	binary.LittleEndian.PutUint32(record[1:5], seq)
	record[5] = byte(len(data))
	copy(record[slotHeaderSize:], data)

	end := slotHeaderSize + len(data)
	crc := protocol.CRC16(record[:end])
	binary.BigEndian.PutUint16(record[end:end+slotCRCSize], crc)
	return record, nil
}

// parseSlot validates a slot and returns its sequence number and payload
func parseSlot(buf []byte) (uint32, []byte, bool) {
	if len(buf) < slotHeaderSize+slotCRCSize || buf[0] != slotMagic {
		return 0, nil, false
	}
	n := int(buf[5])
	end := slotHeaderSize + n
	if end+slotCRCSize > len(buf) {
		return 0, nil, false
	}
	if binary.BigEndian.Uint16(buf[end:end+slotCRCSize]) != protocol.CRC16(buf[:end]) {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint32(buf[1:5]), buf[slotHeaderSize:end], true
}

func decodeValues(payload []byte) (map[string]int32, error) {
	data := payload
	count, err := protocol.DecodeVLQUint(&data)
	if err != nil {
		return nil, err
	}
	values := make(map[string]int32, count)
	for i := uint32(0); i < count; i++ {
		k, err := protocol.DecodeVLQString(&data)
		if err != nil {
			return nil, err
		}
		v, err := protocol.DecodeVLQInt(&data)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
