package main

import (
	"log"

	"github.com/stianeikeland/go-rpio"
)

// rpioPin is a GPIO output on a Pi, by BCM number.
type rpioPin struct {
	pin rpio.Pin
}

func newRPIOPin(bcm byte) *rpioPin {
	pin := rpio.Pin(bcm)
	pin.Output()
	pin.Low()
	return &rpioPin{pin: pin}
}

func (rp *rpioPin) toggle() {
	rp.pin.Toggle()
}

func (rp *rpioPin) isSetHigh() bool {
	return rp.pin.Read() == rpio.High
}

func newRPIOOutputs(settings configSettings) (outputBank, outputPin, error) {
	var bank outputBank
	if err := rpio.Open(); err != nil {
		return bank, nil, err
	}
	for i := range bank {
		id := buttonID(i)
		bcm := settings.GetByte(sButtonPin(id))
		log.Printf("output %s on BCM %d", id, bcm)
		bank[i] = newRPIOPin(bcm)
	}
	return bank, newRPIOPin(settings.GetByte(sPinStatus)), nil
}
