package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Log configures optional log output file as well as the log level setting.
	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log"`

	Decoder struct {
		// Offset at which the WSP header is re-read when a PDU does not start
		// with a push PDU type. 0 disables it.
		FallbackHeaderIndex int `json:"fallback_header_index"`
	} `json:"decoder"`

	// HTTP Address is where the PDU ingest endpoint and the consumer websocket
	// listen, in the form "host:port". Default ":8080".
	HTTP struct {
		Address     string `json:"address"`
		CheckOrigin bool   `json:"check_origin"`
	} `json:"http"`

	// BlockList Dir is the badger directory of blocked senders. If empty,
	// no block list is used.
	BlockList struct {
		Dir string `json:"dir"`
	} `json:"block_list"`

	// Manager URL optionally points at a push manager. Pushes carrying an
	// application id are offered to it before being broadcast.
	Manager struct {
		URL       string `json:"url"`
		TimeoutMs int64  `json:"timeout_ms"`
	} `json:"manager"`

	Consumers struct {
		// Fallback receives every MIME type without its own default,
		// typically the default messaging app.
		Fallback   string            `json:"fallback"`
		ByMimeType map[string]string `json:"by_mime_type"`
	} `json:"consumers"`

	Delivery struct {
		// Default 60000.
		AllowlistDurationMs int64 `json:"allowlist_duration_ms"`
		BusCapacity         int   `json:"bus_capacity"`
	} `json:"delivery"`
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	c := Config{}
	c.validate()
	return &c
}

func (c *Config) LoadFromFile(fPath string) error {
	f, err := os.Open(fPath)
	if err != nil {
		return errors.New("error opening config file: " + err.Error())
	}

	defer f.Close()

	if err = json.NewDecoder(f).Decode(&c); err != nil {
		return errors.New("error reading config file: " + err.Error())
	}

	return c.validate()
}

func (c *Config) validate() error {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	} else if !strings.Contains(c.HTTP.Address, ":") {
		c.HTTP.Address += ":8080" // if just ip/host specified
	}

	if c.Decoder.FallbackHeaderIndex < 0 {
		return errors.New("decoder fallback_header_index must not be negative")
	}

	if c.Manager.URL != "" {
		if !strings.HasPrefix(c.Manager.URL, "http://") && !strings.HasPrefix(c.Manager.URL, "https://") {
			return errors.New("manager url must be http or https: " + c.Manager.URL)
		}
		if c.Manager.TimeoutMs == 0 {
			c.Manager.TimeoutMs = 5000
		}
	}

	for mime, name := range c.Consumers.ByMimeType {
		if name == "" {
			return errors.New("empty consumer name for mime type " + mime)
		}
	}

	if c.Delivery.AllowlistDurationMs <= 0 {
		c.Delivery.AllowlistDurationMs = 60000
	}
	if c.Delivery.BusCapacity <= 0 {
		c.Delivery.BusCapacity = 128
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "error", "warn", "info", "debug":
	default:
		return errors.New("unknown log level: " + c.Log.Level)
	}

	return nil
}

func (c *Config) ManagerTimeout() time.Duration {
	return time.Duration(c.Manager.TimeoutMs) * time.Millisecond
}

func (c *Config) AllowlistDuration() time.Duration {
	return time.Duration(c.Delivery.AllowlistDurationMs) * time.Millisecond
}
