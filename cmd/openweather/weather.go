package main

import (
	"fmt"

	// Packages
	openweather "github.com/mutablelogic/go-weather/pkg/openweather"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type WeatherCommands struct {
	Current  CurrentCommand  `cmd:"" name:"current" help:"Show current weather for a city." group:"WEATHER"`
	Forecast ForecastCommand `cmd:"" name:"forecast" help:"Show a daily forecast for a city." group:"WEATHER"`
	Alerts   AlertsCommand   `cmd:"" name:"alerts" help:"Show active severe weather alerts for a city." group:"WEATHER"`
}

type Location struct {
	City    string `arg:"" name:"city" help:"City name"`
	Country string `name:"country" short:"c" placeholder:"CC" help:"ISO 3166 country code"`
}

type CurrentCommand struct {
	Location
}

type ForecastCommand struct {
	Location
	Days int `name:"days" short:"d" default:"3" help:"Number of days, clamped to 1-5"`
}

type AlertsCommand struct {
	Location
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *CurrentCommand) Run(ctx *Globals) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	text, err := client.CurrentWeather(ctx.ctx, &openweather.CurrentWeatherRequest{
		City:        cmd.City,
		CountryCode: cmd.Country,
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func (cmd *ForecastCommand) Run(ctx *Globals) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	text, err := client.Forecast(ctx.ctx, &openweather.ForecastRequest{
		City:        cmd.City,
		CountryCode: cmd.Country,
		Days:        cmd.Days,
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func (cmd *AlertsCommand) Run(ctx *Globals) error {
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	text, err := client.Alerts(ctx.ctx, &openweather.AlertsRequest{
		City:        cmd.City,
		CountryCode: cmd.Country,
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
