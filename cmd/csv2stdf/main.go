/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/remysealswarchild/CSV-to-STDF-Converter/cmd/csv2stdf/cmd"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
