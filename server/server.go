// Package server exposes every portal operation as a JSON API, manages app
// user credentials in Redis, and keeps both portal sessions alive across
// requests.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	path "path/filepath"

	"codeberg.org/kvo/std/errors"
	"golang.org/x/term"

	"mojejecna/logger"
	"mojejecna/site"
	"mojejecna/site/icanteen"
	"mojejecna/site/spse"
)

var (
	db      *authDB
	mux     *site.Mux
	respath string
	listen  listenConfig
)

func Announce(version string) {
	logger.Info("Running %s", version)
}

type config struct {
	Logging loggingConfig `json:"logging"`
	Listen  listenConfig  `json:"listen"`
	Redis   redisConfig   `json:"redis"`
	Portals portalConfig  `json:"portals"`
}

type loggingConfig struct {
	UseLogFile bool `json:"useLogFile"`
}

type listenConfig struct {
	Address    string `json:"address"`
	TLSAddress string `json:"tlsAddress"`
}

type redisConfig struct {
	Address string `json:"address"`
	DB      int    `json:"db"`
}

type portalConfig struct {
	SchoolURL  string `json:"schoolUrl"`
	CanteenURL string `json:"canteenUrl"`
}

// getConfig reads config.json, falling back to defaults for anything
// unset, and writes the effective configuration back so that every
// available knob is visible in the file.
func getConfig(cfgPath string) (config, error) {
	cfg := config{
		Logging: loggingConfig{UseLogFile: false},
		Listen: listenConfig{
			Address:    "localhost:8080",
			TLSAddress: ":443",
		},
		Redis: redisConfig{
			Address: "localhost:6379",
			DB:      0,
		},
		Portals: portalConfig{
			SchoolURL:  spse.BaseURL,
			CanteenURL: icanteen.BaseURL,
		},
	}

	jsonFile, err := os.OpenFile(cfgPath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return cfg, errors.New("failed to open config.json: "+err.Error(), nil)
	}

	b, err := io.ReadAll(jsonFile)
	if err != nil {
		return cfg, errors.New("failed to read config.json: "+err.Error(), nil)
	}

	err = jsonFile.Close()
	if err != nil {
		return cfg, errors.New("failed to close config.json: "+err.Error(), nil)
	}

	if len(b) > 0 {
		err = json.Unmarshal(b, &cfg)
		if err != nil {
			return cfg, errors.New("failed to unmarshal config.json: "+err.Error(), nil)
		}
	} else {
		logger.Info("Using default configuration settings. These can be edited in the config.json file")
	}

	jsonFile, err = os.OpenFile(cfgPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return cfg, errors.New("failed to open config.json: "+err.Error(), nil)
	}
	defer jsonFile.Close()

	rawJSON, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return cfg, errors.New("failed to marshal config.json: "+err.Error(), nil)
	}
	_, err = jsonFile.Write(rawJSON)
	if err != nil {
		return cfg, errors.New("failed to write to config.json: "+err.Error(), nil)
	}

	return cfg, nil
}

// Configure loads configuration, connects to Redis (prompting for its
// password without echo), and enrols both portals on the multiplexer.
func Configure() error {
	execpath, err := os.Executable()
	if err != nil {
		logger.Fatal("cannot get path to executable: %v", err)
	}
	respath = path.Join(path.Dir(execpath), "res")
	err = os.MkdirAll(respath, os.ModePerm)
	if err != nil {
		return errors.New("cannot create resource folder: "+err.Error(), nil)
	}

	cfg, err := getConfig(path.Join(respath, "config.json"))
	if err != nil {
		logger.Error("Cannot read config file: %v", err)
		logger.Warn("Resorting to default configuration settings...")
	}
	if cfg.Logging.UseLogFile {
		err = logger.UseLogFile(path.Join(respath, "logs"))
		if err != nil {
			return errors.New("log file was not set up successfully: "+err.Error(), nil)
		}
		logger.Info("Log file set up successfully")
	}

	spse.BaseURL = cfg.Portals.SchoolURL
	icanteen.BaseURL = cfg.Portals.CanteenURL
	listen = cfg.Listen

	os.Stdout.WriteString("Redis password: ")
	pwd, err := term.ReadPassword(int(os.Stdin.Fd()))
	os.Stdout.WriteString("\n")
	if err != nil {
		return errors.New("cannot read Redis password: "+err.Error(), nil)
	}

	db = &authDB{client: initDB(cfg.Redis.Address, string(pwd), cfg.Redis.DB)}
	mux = enrol()
	return nil
}

// Run starts the HTTP server. Without TLS the server binds the plain
// listen address, which should never face the open internet.
func Run(tls bool) error {
	cert := path.Join(respath, "cert.pem")
	key := path.Join(respath, "key.pem")

	api := http.NewServeMux()

	api.HandleFunc("/login", loginHandler)
	api.HandleFunc("/logout", logoutHandler)

	api.HandleFunc("/grades", gradesHandler)
	api.HandleFunc("/grades/new", newGradesHandler)
	api.HandleFunc("/years", yearsHandler)
	api.HandleFunc("/timetable", timetableHandler)
	api.HandleFunc("/timetable.png", timetablePNGHandler)
	api.HandleFunc("/timetable/extra", extraHandler)
	api.HandleFunc("/absences", absencesHandler)
	api.HandleFunc("/attendance", attendanceHandler)
	api.HandleFunc("/teachers", teachersHandler)
	api.HandleFunc("/teachers/", teacherHandler)
	api.HandleFunc("/rooms", roomsHandler)
	api.HandleFunc("/rooms/", roomHandler)
	api.HandleFunc("/news", newsHandler)
	api.HandleFunc("/account", accountHandler)

	api.HandleFunc("/canteen/menu", menuHandler)
	api.HandleFunc("/canteen/burza", burzaHandler)
	api.HandleFunc("/canteen/order", orderHandler)

	if tls {
		logger.Info("Running on %s", listen.TLSAddress)
		return http.ListenAndServeTLS(listen.TLSAddress, cert, key, api)
	}
	logger.Warn("Running on %s (without TLS). DO NOT USE THIS IN PRODUCTION!", listen.Address)
	return http.ListenAndServe(listen.Address, api)
}
