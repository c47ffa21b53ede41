package oracle_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pylon-protocol/deployer/oracle"
)

const quotes = `{"uluna":"0.01133","usdr":"0.104938","uusd":"0.15","ukrw":178.05,"umnt":"bad"}`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/txs/gas_prices", r.URL.Path)
		io.WriteString(w, quotes)
	}))
	defer srv.Close()

	o := oracle.New(srv.URL+"/v1/txs/gas_prices", time.Second)
	prices, err := o.Fetch(context.Background(), []string{"uusd", "uluna"})
	require.NoError(t, err)
	require.Equal(t, "0.15uusd,0.01133uluna", prices.String())
}

func TestParsePrices(t *testing.T) {
	prices, err := oracle.ParsePrices([]byte(quotes), []string{"ukrw"})
	require.NoError(t, err)
	require.Equal(t, "178.05ukrw", prices.String())

	_, err = oracle.ParsePrices([]byte(quotes), []string{"uusd", "ueur"})
	require.ErrorIs(t, err, oracle.ErrDenomNotQuoted)

	_, err = oracle.ParsePrices([]byte(quotes), []string{"umnt"})
	require.ErrorIs(t, err, oracle.ErrBadQuote)

	_, err = oracle.ParsePrices([]byte("<html>"), []string{"uusd"})
	require.ErrorIs(t, err, oracle.ErrBadQuote)
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := oracle.New(srv.URL, time.Second).Fetch(context.Background(), []string{"uusd"})
	require.Error(t, err)
}
