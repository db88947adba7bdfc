// Package reliability implements the self-healing loop: a diagnoser that
// surfaces unhealthy components and a recovery manager that drives them back
// to a healthy state, both reporting through events and the point registry.
package reliability
