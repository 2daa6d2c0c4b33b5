package main

// @title        switchd API
// @version      1.0
// @description  Model lifecycle and accelerator telemetry daemon.
// @BasePath     /
