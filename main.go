package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli"
)

// discopanel -config={config file}

func main() {
	app := cli.NewApp()
	app.Name = "discopanel"
	app.Usage = "touch button panel driving four outputs"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Value: "", Usage: "JSON config file path"},
		cli.StringFlag{Name: "display", Usage: "display: log, ltdc, terminal or window"},
		cli.StringFlag{Name: "touch", Usage: "touch source: queue, ft5336, terminal or window"},
		cli.StringFlag{Name: "outputs", Usage: "outputs: log or rpio"},
		cli.StringFlag{Name: "status", Usage: "status service listen address, empty disables it"},
		cli.BoolFlag{Name: "stdout", Usage: "log to stdout as well as the log file"},
		cli.BoolFlag{Name: "skip-memtest", Usage: "skip the external memory test"},
		cli.BoolFlag{Name: "dump", Usage: "log every register and bus transfer"},
	}
	app.Action = runPanel

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func applyFlags(c *cli.Context, s configSettings) {
	for flag, key := range map[string]string{
		"display": sDisplayType,
		"touch":   sTouchSource,
		"outputs": sOutputType,
		"status":  sStatusAddr,
	} {
		if c.IsSet(flag) {
			s.Set(key, c.String(flag))
		}
	}
	if c.Bool("skip-memtest") {
		s.Set(sMemtest, false)
	}
	if c.Bool("dump") {
		s.Set(sDebug, true)
	}
}

func runPanel(c *cli.Context) error {
	s, err := loadSettings(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, s)

	lj, err := setupLogging(s, c.Bool("stdout"))
	if err != nil {
		log.Printf("logging to stderr: %v", err)
	} else {
		defer lj.Close()
	}
	if s.GetBool(sDebug) {
		s.Dump()
	}

	rt := initRuntime(s)
	if err := setupBoard(&rt); err != nil {
		log.Fatalf("board setup failed: %v", err)
	}

	if s.GetString(sStatusAddr) != "" {
		rt.statusSvc = newHTTPStatusService(s)
		startStatusService(rt)
	}
	startTouchSampler(rt)
	startGUI(rt)
	startOutputDriver(rt)
	startHeartbeat(rt)

	var once sync.Once
	shutdown := func() { once.Do(func() { close(rt.comms.quit) }) }

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			log.Printf("got %v, shutting down", sig)
			shutdown()
		case <-rt.comms.quit:
		}
	}()

	if fg, ok := rt.display.(foreground); ok {
		if err := fg.runForeground(rt); err != nil {
			log.Println(err.Error())
		}
		shutdown()
	} else {
		<-rt.comms.quit
	}

	rt.wg.Wait()
	rt.display.displayOn(false)
	rt.touch.closeTouch()
	log.Println("Exiting")
	return nil
}
