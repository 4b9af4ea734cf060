package main

import (
	"fmt"
	"image"
	"io/ioutil"
	"log"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// setting names
const (
	sTouchPeriod   = "touchPeriod"
	sDebounceTicks = "debounceTicks"
	sGUIPeriod     = "guiPeriod"
	sBlinkPeriod   = "blinkPeriod"
	sTouchQueue    = "touchQueueLen"
	sEventQueue    = "eventQueueLen"
	sPanelWidth    = "panelWidth"
	sPanelHeight   = "panelHeight"
	sSDRAMBase     = "sdramBase"
	sSDRAMSize     = "sdramSize"
	sMemtest       = "memtest"
	sMemtestWords  = "memtestWords"
	sI2CBus        = "i2c_bus"
	sI2CSim        = "i2c_simulated"
	sTouchThresh   = "touchThreshold"
	sDebug         = "debug_dump"
	sTouchSource   = "touch"
	sDisplayType   = "display"
	sOutputType    = "outputs"
	sPinStatus     = "pinStatus"
	sLogFile       = "logFile"
	sLogMaxSize    = "logMaxSize"
	sLogBackups    = "logMaxBackups"
	sLogStdout     = "logStdout"
	sStatusAddr    = "statusAddr"
	sStatusUser    = "statusUser"
	sStatusSecret  = "statusSecret"
	sStatusConns   = "statusMaxConns"
	sTitle         = "title"
)

// per button settings are "button<ID>" (area) and "pin<ID>" (BCM pin)
func sButtonArea(id buttonID) string { return "button" + id.String() }
func sButtonPin(id buttonID) string  { return "pin" + id.String() }

type configSettings interface {
	GetString(key string) string
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	GetByte(key string) byte
	GetInt(key string) int
	GetInt64(key string) int64
	GetRect(key string) image.Rectangle
	Set(key string, val interface{})
	Dump()
}

// keep settings generic, type-convert on the fly
type settings struct {
	settings map[string]interface{}
}

func defaultSettings() *settings {
	s := make(map[string]interface{})

	// setting the type here makes the conversion "automatic" later
	s[sTouchPeriod] = 50 * time.Millisecond
	s[sDebounceTicks] = 10
	s[sGUIPeriod] = 120 * time.Millisecond
	s[sBlinkPeriod] = 300 * time.Millisecond
	s[sTouchQueue] = 1
	s[sEventQueue] = 32
	s[sPanelWidth] = 480
	s[sPanelHeight] = 272
	s[sSDRAMBase] = int64(0xC0000000)
	s[sSDRAMSize] = int64(8 << 20)
	s[sMemtest] = true
	s[sMemtestWords] = 1 << 16
	s[sI2CBus] = byte(1)
	s[sTouchThresh] = byte(0)
	s[sDebug] = false
	s[sTouchSource] = "queue"
	s[sDisplayType] = "log"
	s[sOutputType] = "log"
	s[sPinStatus] = byte(18)
	s[sLogFile] = "/var/log/discopanel.log"
	s[sLogMaxSize] = 10
	s[sLogBackups] = 3
	s[sLogStdout] = false
	s[sStatusAddr] = ""
	s[sStatusUser] = "discopanel"
	s[sStatusSecret] = ""
	s[sStatusConns] = 4
	s[sTitle] = "STM32F746 DISCO"

	// 2x2 grid, 100x50 each
	s[sButtonArea(D0)] = image.Rect(100, 60, 200, 110)
	s[sButtonArea(D1)] = image.Rect(280, 60, 380, 110)
	s[sButtonArea(D2)] = image.Rect(100, 150, 200, 200)
	s[sButtonArea(D3)] = image.Rect(280, 150, 380, 200)
	s[sButtonPin(D0)] = byte(17)
	s[sButtonPin(D1)] = byte(27)
	s[sButtonPin(D2)] = byte(22)
	s[sButtonPin(D3)] = byte(23)

	on := true
	if runtime.GOARCH == "arm" {
		on = false
	}
	s[sI2CSim] = on

	return &settings{settings: s}
}

func (s *settings) settingsFromJSON(data []byte) error {
	tmp := defaultSettings()
	for k, initVal := range tmp.settings {
		// ignore missing fields
		_, dataType, _, err := jsonparser.Get(data, k)
		if dataType == jsonparser.NotExist {
			continue
		}
		if err != nil {
			return err
		}

		switch initVal.(type) {
		case uint8:
			var val int64
			val, err = jsonparser.GetInt(data, k)
			if err != nil {
				// try strconv for "0x.." strings
				var valString string
				valString, err = jsonparser.GetString(data, k)
				if err == nil {
					val, err = strconv.ParseInt(valString, 0, 64)
				}
			}
			if err == nil && (val < 0 || val > 0xFF) {
				err = fmt.Errorf("%s: %d out of range for a byte", k, val)
			}
			if err == nil {
				s.settings[k] = byte(val)
			}
		case int:
			var val int64
			val, err = jsonparser.GetInt(data, k)
			if err == nil {
				s.settings[k] = int(val)
			}
		case int64:
			var val int64
			val, err = jsonparser.GetInt(data, k)
			if err != nil {
				var valString string
				valString, err = jsonparser.GetString(data, k)
				if err == nil {
					val, err = strconv.ParseInt(valString, 0, 64)
				}
			}
			if err == nil {
				s.settings[k] = val
			}
		case bool:
			var bVal bool
			bVal, err = jsonparser.GetBoolean(data, k)
			if err != nil {
				// try true and false
				str, _ := jsonparser.GetString(data, k)
				switch strings.ToLower(str) {
				case "true":
					bVal, err = true, nil
				case "false":
					bVal, err = false, nil
				}
			}
			if err == nil {
				s.settings[k] = bVal
			}
		case time.Duration:
			var dur string
			dur, err = jsonparser.GetString(data, k)
			if err == nil {
				var dur2 time.Duration
				dur2, err = time.ParseDuration(dur)
				if err == nil {
					s.settings[k] = dur2
				}
			}
		case string:
			s.settings[k], err = jsonparser.GetString(data, k)
		case image.Rectangle:
			// [x, y, width, height]
			var vals []int
			_, err = jsonparser.ArrayEach(data, func(value []byte, dt jsonparser.ValueType, _ int, _ error) {
				if dt != jsonparser.Number {
					return
				}
				if v, perr := jsonparser.ParseInt(value); perr == nil {
					vals = append(vals, int(v))
				}
			}, k)
			if err == nil && len(vals) != 4 {
				err = fmt.Errorf("%s: want [x, y, width, height], got %v", k, vals)
			}
			if err == nil {
				s.settings[k] = image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3])
			}
		default:
			err = fmt.Errorf("Bad type: %T", initVal)
		}
		if err != nil {
			return fmt.Errorf("setting %s: %v", k, err)
		}
	}
	return nil
}

func loadSettings(configFile string) (*settings, error) {
	s := defaultSettings()
	if configFile == "" {
		return s, nil
	}

	data, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not load conf file '%s': %v", configFile, err)
	}
	log.Printf("Reading configuration from '%s'", configFile)

	if err := s.settingsFromJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

func initSettings(configFile string) configSettings {
	log.Println("initSettings")
	s, err := loadSettings(configFile)
	if err != nil {
		log.Fatal(err.Error())
	}
	return s
}

func (s *settings) Set(key string, val interface{}) {
	s.settings[key] = val
}

func (s *settings) GetString(key string) string {
	switch v := s.settings[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func (s *settings) GetBool(key string) bool {
	switch v := s.settings[key].(type) {
	case bool:
		return v
	default:
		return false
	}
}

func (s *settings) GetDuration(key string) time.Duration {
	switch v := s.settings[key].(type) {
	case time.Duration:
		return v
	default:
		return -1
	}
}

func (s *settings) GetByte(key string) byte {
	switch v := s.settings[key].(type) {
	case byte:
		return v
	case int: // cast to byte
		return byte(v)
	default:
		return 0
	}
}

func (s *settings) GetInt(key string) int {
	switch v := s.settings[key].(type) {
	case int:
		return v
	case byte:
		return int(v)
	default:
		return 0
	}
}

func (s *settings) GetInt64(key string) int64 {
	switch v := s.settings[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func (s *settings) GetRect(key string) image.Rectangle {
	switch v := s.settings[key].(type) {
	case image.Rectangle:
		return v
	default:
		return image.Rectangle{}
	}
}

func (s *settings) Dump() {
	keys := make([]string, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.settings[k]
		log.Printf("%s : %T: %v\n", k, v, v)
	}
}
