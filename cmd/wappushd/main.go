package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kardianos/service"
	"github.com/psanford/wappush/blocklist"
	"github.com/psanford/wappush/config"
	"github.com/psanford/wappush/delivery"
	"github.com/psanford/wappush/dispatch"
	"github.com/psanford/wappush/ingest"
	"github.com/psanford/wappush/manager"
	"github.com/psanford/wappush/mms"
	"github.com/psanford/wappush/wap"
	"github.com/psanford/wappush/wsp"
	log "github.com/sirupsen/logrus"
)

type program struct {
	configFlag string
	execDir    string

	block  *blocklist.Store
	bus    *delivery.Bus
	server *http.Server
}

func (p *program) Start(s service.Service) error {
	conf, err := loadConfig(p.configFlag, p.execDir)
	if err != nil {
		return err
	}

	if err := setupLogging(conf); err != nil {
		return err
	}

	deps := dispatch.Deps{
		Notifications: mms.Parser{},
	}

	if conf.BlockList.Dir != "" {
		p.block, err = blocklist.Open(conf.BlockList.Dir)
		if err != nil {
			return err
		}
		deps.BlockList = p.block
	}

	binding := &dispatch.ManagerBinding{}
	if conf.Manager.URL != "" {
		binding.Bind(manager.New(conf.Manager.URL, conf.ManagerTimeout()))
	}
	deps.Managers = binding

	reg := delivery.NewRegistry()
	for mime, name := range conf.Consumers.ByMimeType {
		reg.SetDefault(mime, dispatch.Consumer{Name: name})
	}
	reg.SetFallback(dispatch.Consumer{Name: conf.Consumers.Fallback})
	deps.Consumers = reg

	p.bus = delivery.NewBus(conf.Delivery.BusCapacity)
	deps.Sink = p.bus

	d := dispatch.New(dispatch.Config{
		FallbackHeaderIndex: conf.Decoder.FallbackHeaderIndex,
		AllowlistDuration:   conf.AllowlistDuration(),
	}, deps)

	mux := http.NewServeMux()
	mux.Handle("/pdu", ingest.Handler(d))
	mux.Handle("/consumers", delivery.NewWSHandler(p.bus, conf.HTTP.CheckOrigin))

	p.server = &http.Server{
		Addr:    conf.HTTP.Address,
		Handler: mux,
	}

	go func() {
		log.WithField("address", conf.HTTP.Address).Info("listening")
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}
	if p.bus != nil {
		p.bus.Close()
	}
	if p.block != nil {
		return p.block.Close()
	}
	return nil
}

func loadConfig(configFlag, execDir string) (*config.Config, error) {
	if configFlag != "" {
		var c config.Config
		if err := c.LoadFromFile(configFlag); err != nil {
			return nil, err
		}
		log.Infoln("Using config file:", configFlag)
		return &c, nil
	}

	toTry := filepath.Join(execDir, "config.json")
	if fileExists(toTry) {
		var c config.Config
		if err := c.LoadFromFile(toTry); err != nil {
			return nil, err
		}
		log.Infoln("Using config file:", toTry)
		return &c, nil
	}

	log.Infoln("No config file specified or found. Using defaults.")
	return config.Default(), nil
}

func setupLogging(conf *config.Config) error {
	if conf.Log.File != "" {
		f, err := os.OpenFile(conf.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		log.SetOutput(f)
	}
	if conf.Log.Level != "" {
		lvl, err := log.ParseLevel(conf.Log.Level)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
	}
	return nil
}

func main() {
	svcFlag := flag.String("service", "", "Control the system service.")
	cnfFlag := flag.String("c", "", "Path of config file.")
	decodeFlag := flag.String("decode", "", "Decode a hex encoded WAP push PDU, print it and exit.")
	fallbackFlag := flag.Int("fallback-index", -1, "Fallback header index used with -decode.")
	blockFlag := flag.String("block", "", "Add an address to the block list and exit.")
	unblockFlag := flag.String("unblock", "", "Remove an address from the block list and exit.")
	listBlockedFlag := flag.Bool("list-blocked", false, "Print the block list and exit.")
	flag.Parse()

	if *decodeFlag != "" {
		if err := decodeCmd(*decodeFlag, *fallbackFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	eDir, _ := filepath.Split(ePath)

	if *blockFlag != "" || *unblockFlag != "" || *listBlockedFlag {
		conf, err := loadConfig(*cnfFlag, eDir)
		if err != nil {
			log.Fatal(err)
		}
		if err := blockCmd(conf, *blockFlag, *unblockFlag, *listBlockedFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Set defaults before config override.
	if service.Interactive() {
		log.SetLevel(log.DebugLevel)
	} else {
		f, err := os.OpenFile(filepath.Join(eDir, "wappushd.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal(err)
		}
		log.SetOutput(f)
	}

	prg := program{configFlag: *cnfFlag, execDir: eDir}
	svcConfig := service.Config{
		Name:        "wappushd",
		DisplayName: "wappushd WAP push dispatcher",
		Description: "Decodes WAP push PDUs and delivers them to push managers and consumers.",
	}

	s, err := service.New(&prg, &svcConfig)
	if err != nil {
		log.Fatal(err)
	}

	if len(*svcFlag) != 0 {
		err := service.Control(s, *svcFlag)
		if err != nil {
			log.Printf("Valid actions: %q\n", service.ControlAction)
			log.Fatal(err)
		}
		return
	}

	err = s.Run()
	if err != nil {
		log.Fatal(err)
	}
}

func decodeCmd(hexPDU string, fallback int) error {
	pdu, err := hex.DecodeString(strings.Join(strings.Fields(hexPDU), ""))
	if err != nil {
		return err
	}

	push, err := wap.Decode(pdu, wap.WithFallbackHeaderIndex(fallback))
	if err != nil {
		return err
	}

	fmt.Printf("transaction id: %d\n", push.TransactionID)
	fmt.Printf("pdu type:       0x%02x\n", push.PDUType)
	fmt.Printf("content type:   %q (0x%x)\n", push.MimeType, push.BinaryContentType)
	for k, v := range push.ContentTypeParameters {
		fmt.Printf("  param %s=%q\n", k, v)
	}
	if push.HasApplicationID() {
		fmt.Printf("application id: %s", push.ApplicationID)
		if code, err := strconv.ParseUint(push.ApplicationID, 10, 32); err == nil {
			if name, ok := wsp.ApplicationIDName(uint32(code)); ok {
				fmt.Printf(" (%s)", name)
			}
		}
		fmt.Println()
	}
	fmt.Printf("header:         %x\n", push.Header)
	fmt.Printf("body:           %d bytes\n", len(push.Body))

	if push.IsMMS() {
		n, err := mms.ParseNotification(push.Body)
		if err != nil {
			fmt.Printf("mms:            %s\n", err)
			return nil
		}
		fmt.Printf("mms from:       %s\n", n.Sender())
		fmt.Printf("mms subject:    %s\n", n.Subject)
		fmt.Printf("mms size:       %d\n", n.MessageSize)
		fmt.Printf("mms location:   %s\n", n.ContentLocation)
		if exp := n.ExpiresAt(time.Now()); !exp.IsZero() {
			fmt.Printf("mms expires:    %s\n", exp.Format(time.RFC3339))
		}
	}
	return nil
}

func blockCmd(conf *config.Config, add, remove string, list bool) error {
	if conf.BlockList.Dir == "" {
		return errors.New("no block_list dir configured")
	}
	s, err := blocklist.Open(conf.BlockList.Dir)
	if err != nil {
		return err
	}
	defer s.Close()

	if add != "" {
		if err := s.Add(add); err != nil {
			return err
		}
	}
	if remove != "" {
		if err := s.Remove(remove); err != nil {
			return err
		}
	}
	if list {
		addrs, err := s.List()
		if err != nil {
			return err
		}
		for _, a := range addrs {
			fmt.Println(a)
		}
	}
	return nil
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}
