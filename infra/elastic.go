package infra

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/skyvolt/fleetmon/config"
)

func NewElasticClient() (*elastic.Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:    &tls.Config{InsecureSkipVerify: true},
			MaxIdleConns:       10,
			IdleConnTimeout:    30 * time.Second,
			DisableCompression: true,
			DisableKeepAlives:  true,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	conf := config.GetConfig().Elastic
	scheme := "http"
	if strings.HasPrefix(conf.Host, "https") {
		scheme = "https"
	}

	return elastic.NewClient(
		elastic.SetURL(conf.Host),
		elastic.SetScheme(scheme),
		elastic.SetBasicAuth(conf.Username, conf.Password),
		elastic.SetSniff(false),
		elastic.SetHttpClient(httpClient),
		elastic.SetHealthcheckTimeout(300*time.Second),
	)
}
