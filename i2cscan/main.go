package main

import (
	"log"
	"os"
	"time"

	"dscheirer.com/discopanel/ft5336"
	"dscheirer.com/discopanel/i2c"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "i2cscan"
	app.Usage = "probe an i2c bus, then watch the touch controller"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "bus", Value: 1, Usage: "i2c bus number (/dev/i2c-N)"},
		cli.BoolFlag{Name: "sim", Usage: "scan a simulated bus with a touch controller on it"},
		cli.DurationFlag{Name: "pause", Value: 10 * time.Millisecond, Usage: "delay between probes"},
		cli.DurationFlag{Name: "poll", Value: 50 * time.Millisecond, Usage: "touch poll period"},
		cli.IntFlag{Name: "count", Value: 0, Usage: "touch polls before exiting, 0 runs forever"},
	}
	app.Action = scan

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func scan(c *cli.Context) error {
	bus, err := i2c.Open(c.Int("bus"), c.Bool("sim"))
	if err != nil {
		return err
	}
	defer bus.Close()
	if c.Bool("sim") {
		regs := i2c.NewRegisterFile()
		regs.Set(0xA8, ft5336.ChipID)
		bus.Attach(ft5336.Address, regs)
	}

	pause := c.Duration("pause")
	found := 0
	for addr := uint16(0x00); addr <= 0x7F; addr++ {
		if bus.Probe(addr) {
			log.Printf("found device at 0x%02x", addr)
			found++
		}
		time.Sleep(pause)
	}
	log.Printf("scan done, %d device(s)", found)

	dev := ft5336.New(bus)
	if err := dev.Configure(ft5336.Config{}); err != nil {
		return err
	}
	log.Printf("ft5336 at 0x%02x configured, watching touches", dev.Address)

	count := c.Int("count")
	for i := 0; count == 0 || i < count; i++ {
		n, err := dev.DetectTouch()
		if err != nil {
			log.Println(err.Error())
		} else if n > 0 {
			t, err := dev.GetTouch(1)
			if err != nil {
				log.Println(err.Error())
			} else {
				log.Printf("touch %d of %d: x=%d y=%d weight=%d", t.ID, n, t.X, t.Y, t.Weight)
			}
		}
		time.Sleep(c.Duration("poll"))
	}
	return nil
}
