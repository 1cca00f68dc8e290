// internal/writer/types.go
package writer

// StatusPlan locates one device's status block on an endpoint.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index; register address = BaseSlot * SlotsPerDevice
	DeviceName string
}

// endpointClient is the exact contract the status writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
