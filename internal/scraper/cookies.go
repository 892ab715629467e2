package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"tokbarr/internal/logging"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all"
	"github.com/browserutils/kooky/browser/chrome"
	"github.com/browserutils/kooky/browser/firefox"
	"github.com/browserutils/kooky/browser/safari"
)

// CookieManager retrieves cookies from a cookie file or installed browsers.
// Useful for sites which gate video pages behind authentication.
type CookieManager struct {
	cookieFilePath string
	stores         []kooky.CookieStore
}

func NewCookieManager(cookieFilePath string) *CookieManager {
	return &CookieManager{
		cookieFilePath: cookieFilePath,
	}
}

// GetCookies retrieves cookies for a given URL, using the configured cookie
// file if provided, falling back to browser cookie stores.
func (cm *CookieManager) GetCookies(rawURL string) ([]*http.Cookie, error) {
	baseDomain, err := extractBaseDomain(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract base domain: %w", err)
	}

	if cm.cookieFilePath != "" {
		logging.D(2, "Reading cookies from specified file: %s", cm.cookieFilePath)
		kookyCookies, err := readCookieFile(cm.cookieFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read cookies from file: %w", err)
		}
		return convertToHTTPCookies(kookyCookies), nil
	}

	if cm.stores == nil {
		cm.stores = kooky.FindAllCookieStores()
	}

	var cookies []*http.Cookie
	for _, store := range cm.stores {
		browserName := store.Browser()
		logging.D(2, "Attempting to read cookies from %s", browserName)

		found, err := store.ReadCookies(kooky.Valid, kooky.Domain(baseDomain))
		if err != nil {
			logging.D(2, "Failed to read cookies from %s: %v", browserName, err)
			continue
		}

		if len(found) > 0 {
			logging.D(1, "Read %d cookies from %s for domain %s", len(found), browserName, baseDomain)
			cookies = append(cookies, convertToHTTPCookies(found)...)
		}
	}

	if len(cookies) == 0 {
		logging.D(1, "No cookies found for %q, proceeding without cookies", rawURL)
	}

	return cookies, nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Path:   c.Path,
			Domain: c.Domain,
			Secure: c.Secure,
		}
	}
	return httpCookies
}

// extractBaseDomain parses a URL and extracts its base domain.
func extractBaseDomain(urlString string) (string, error) {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return "", err
	}

	parts := strings.Split(parsedURL.Hostname(), ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], "."), nil
	}
	return parsedURL.Hostname(), nil
}

// readCookieFile reads cookies from the specified cookie file.
func readCookieFile(cookieFilePath string) ([]*kooky.Cookie, error) {
	var store kooky.CookieStore
	var err error

	switch {
	case strings.Contains(cookieFilePath, "firefox"), strings.Contains(cookieFilePath, "cookies.sqlite"):
		store, err = firefox.CookieStore(cookieFilePath)
	case strings.Contains(cookieFilePath, "safari"), strings.Contains(cookieFilePath, "Cookies.binarycookies"):
		store, err = safari.CookieStore(cookieFilePath)
	case strings.Contains(cookieFilePath, "chrome"), strings.Contains(cookieFilePath, "Cookies"):
		store, err = chrome.CookieStore(cookieFilePath)
	default:
		return nil, fmt.Errorf("unsupported cookie file format")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create cookie store: %w", err)
	}

	cookies, err := store.ReadCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	return cookies, nil
}
