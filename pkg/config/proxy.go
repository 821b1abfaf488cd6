package config

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/fileutil"
	"github.com/zan8in/gologger"
)

const (
	SOCKS5 = "socks5"
	HTTP   = "http"
	HTTPS  = "https"
)

// LoadProxy resolves the proxy option for API requests. proxy is a URL, a
// comma separated list of URLs, or a file with one URL per line. The first
// reachable entry wins; with a zero timeout reachability is not checked.
func LoadProxy(proxy string, timeout time.Duration) (string, error) {
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return "", nil
	}

	var list []url.URL
	if strings.Contains(proxy, ",") {
		for _, p := range strings.Split(proxy, ",") {
			if strings.TrimSpace(p) == "" {
				continue
			}
			u, err := validateProxyURL(p)
			if err != nil {
				return "", err
			}
			list = append(list, u)
		}
	} else if u, err := validateProxyURL(proxy); err == nil {
		list = append(list, u)
	} else if fileutil.FileExists(proxy) {
		file, err := os.Open(proxy)
		if err != nil {
			return "", fmt.Errorf("could not open proxy file: %w", err)
		}
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			u, err := validateProxyURL(line)
			if err != nil {
				return "", err
			}
			list = append(list, u)
		}
	} else {
		return "", fmt.Errorf("invalid proxy file or URL provided for %s", proxy)
	}

	if len(list) == 0 {
		return "", errors.New("could not find any valid proxy")
	}
	if timeout <= 0 {
		return list[0].String(), nil
	}
	for _, u := range list {
		if err := testProxyConnection(u, timeout); err != nil {
			gologger.Debug().Msgf("proxy %s unreachable: %v", u.String(), err)
			continue
		}
		gologger.Verbose().Msgf("Using %s as proxy server", u.String())
		return u.String(), nil
	}
	return "", errors.New("no reachable proxy found")
}

func testProxyConnection(proxyURL url.URL, timeout time.Duration) error {
	port := proxyURL.Port()
	if port == "" {
		switch proxyURL.Scheme {
		case HTTPS:
			port = "443"
		case SOCKS5:
			port = "1080"
		default:
			port = "80"
		}
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(proxyURL.Hostname(), port), timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

func validateProxyURL(proxy string) (url.URL, error) {
	proxy = strings.TrimSpace(proxy)
	if u, err := url.Parse(proxy); err == nil && isSupportedProtocol(u.Scheme) && u.Host != "" {
		return *u, nil
	}
	return url.URL{}, errors.New("invalid proxy format (It should be http[s]/socks5://[username:password@]host:port), ProxyURL: " + proxy)
}

// isSupportedProtocol checks given protocols are supported
func isSupportedProtocol(value string) bool {
	return value == HTTP || value == HTTPS || value == SOCKS5
}
